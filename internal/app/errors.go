package service

import "errors"

var (
	// ErrNoMode is returned when an operation needs a mode and none is selected.
	ErrNoMode = errors.New("no mode selected")
	// ErrAdvanceUnsupported is returned by AdvanceToNext outside gauntlet and reverse runs.
	ErrAdvanceUnsupported = errors.New("mode does not advance")
	// ErrSessionActive is returned by AdvanceToNext before the current session ends.
	ErrSessionActive = errors.New("current session still active")
	// ErrRunOver is returned by AdvanceToNext once the run has ended.
	ErrRunOver = errors.New("run is over")
)
