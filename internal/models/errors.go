package models

import "errors"

var (
	ErrSessionNotFound     = errors.New("session is not found")
	ErrSessionClosed       = errors.New("session is closed")
	ErrNameEmpty           = errors.New("display name is empty")
	ErrNameTaken           = errors.New("display name already taken")
	ErrNotCreator          = errors.New("caller is not the session creator")
	ErrInvalidState        = errors.New("operation is not valid in the current session state")
	ErrParticipantNotFound = errors.New("participant is not found")
	ErrVotingNotOpen       = errors.New("voting is not open")
	ErrNotEnoughOptions    = errors.New("the number of options should be at least 2")
	ErrFailedToProcessData = errors.New("failed to process data")
)
