package service

import (
	"errors"
	"fmt"

	"secret_santa/internal/repository"
)

var (
	ErrRoomNotFound             = errors.New("room not found")
	ErrRoomAlreadyStarted       = errors.New("the drawing has already started")
	ErrNotAuthorized            = errors.New("not authorized for this room")
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrCannotRemoveOwner        = errors.New("the room owner cannot be removed")
	ErrInsufficientParticipants = errors.New("at least two participants are required to start")
	ErrInvalidInput             = errors.New("invalid input")
	ErrStorageFailure           = errors.New("storage failure")
)

// mapRepoError 將儲存層錯誤轉為服務層錯誤，未知錯誤一律包成 ErrStorageFailure
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repository.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repository.ErrRoomStarted):
		return ErrRoomAlreadyStarted
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
