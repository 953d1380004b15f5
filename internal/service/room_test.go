package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secret_santa/internal/models"
	"secret_santa/internal/repository"
)

func newTestService(t *testing.T) (*RoomService, *repository.MemoryRoomRepository, *recordingNotifier) {
	t.Helper()
	repo := repository.NewMemoryRoomRepository(100)
	notifier := &recordingNotifier{}
	return NewRoomService(repo, notifier), repo, notifier
}

// createRoomWith 創建房間並加入 extra 位參與者，回傳房間 ID、房主 token 與所有 token
func createRoomWith(t *testing.T, svc *RoomService, extra int) (string, string, []string) {
	t.Helper()
	ctx := context.Background()
	created, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Office party", HostName: "Alice"})
	require.NoError(t, err)

	tokens := []string{created.OwnerToken}
	for i := 0; i < extra; i++ {
		joined, err := svc.JoinRoom(ctx, created.Room.ID, JoinRoomInput{Name: fmt.Sprintf("Guest %d", i)})
		require.NoError(t, err)
		tokens = append(tokens, joined.Token)
	}
	return created.Room.ID, created.OwnerToken, tokens
}

func TestRoomService_CreateRoom(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Room A", HostName: "Alice"})
	require.NoError(t, err)

	assert.Regexp(t, shortRoomID, result.Room.ID)
	assert.Equal(t, "Room A", result.Room.Name)
	assert.Nil(t, result.Room.StartedAt)
	require.Len(t, result.Room.Participants, 1)
	assert.Equal(t, "Alice", result.Room.Participants[0].Name)
	assert.Equal(t, result.Participant.ID, result.Room.Participants[0].ID)
	assert.NotEmpty(t, result.OwnerToken)

	stored, err := repo.FindByID(ctx, result.Room.ID)
	require.NoError(t, err)
	require.Len(t, stored.Participants, 1)
	assert.Equal(t, stored.Participants[0].Token, stored.OwnerToken)
	assert.Equal(t, result.OwnerToken, stored.OwnerToken)
	assert.False(t, stored.IsStarted())
	assert.Nil(t, stored.Assignments)
}

func TestRoomService_CreateRoom_DefaultsAndValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "   ", HostName: "  Bob  "})
	require.NoError(t, err)
	assert.Equal(t, "Bob's room", result.Room.Name)
	assert.Equal(t, "Bob", result.Participant.Name)

	long, err := svc.CreateRoom(ctx, CreateRoomInput{HostName: strings.Repeat("x", 60)})
	require.NoError(t, err)
	assert.Len(t, []rune(long.Room.Name), maxRoomNameLength)

	exact, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: strings.Repeat("r", maxRoomNameLength), HostName: "Bob"})
	require.NoError(t, err)
	assert.Len(t, []rune(exact.Room.Name), maxRoomNameLength)

	_, err = svc.CreateRoom(ctx, CreateRoomInput{RoomName: strings.Repeat("r", maxRoomNameLength+1), HostName: "Bob"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Room", HostName: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Room", HostName: strings.Repeat("y", maxNameLength+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoomService_CreateRoom_RetriesDuplicateInsert(t *testing.T) {
	repo := new(mockRoomRepository)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()

	repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Room")).Return(repository.ErrDuplicateEntry).Once()
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Room")).Return(nil).Once()

	result, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Room", HostName: "Alice"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Room.ID)
	repo.AssertNumberOfCalls(t, "Insert", 2)
}

func TestRoomService_CreateRoom_StorageFailure(t *testing.T) {
	repo := new(mockRoomRepository)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()

	repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Room")).Return(errors.New("disk full"))

	_, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "Room", HostName: "Alice"})

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.NotContains(t, err.Error(), "token")
}

func TestRoomService_JoinRoom(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	roomID, _, _ := createRoomWith(t, svc, 0)

	joined, err := svc.JoinRoom(ctx, roomID, JoinRoomInput{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", joined.Participant.Name)
	assert.NotEmpty(t, joined.Token)
	assert.Len(t, joined.Room.Participants, 2)

	// 名稱可以重複
	again, err := svc.JoinRoom(ctx, roomID, JoinRoomInput{Name: "Bob"})
	require.NoError(t, err)
	assert.NotEqual(t, joined.Participant.ID, again.Participant.ID)
	assert.NotEqual(t, joined.Token, again.Token)

	assert.Equal(t, []models.RoomEventType{models.EventParticipantJoined, models.EventParticipantJoined}, notifier.types())

	_, err = svc.JoinRoom(ctx, "nope00", JoinRoomInput{Name: "Bob"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.JoinRoom(ctx, roomID, JoinRoomInput{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoomService_JoinRoom_AfterStart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, _ := createRoomWith(t, svc, 1)

	_, err := svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, roomID, JoinRoomInput{Name: "Late"})
	assert.ErrorIs(t, err, ErrRoomAlreadyStarted)

	participants, err := svc.GetParticipants(ctx, roomID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestRoomService_RemoveParticipant(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 2)

	self, err := svc.GetSelf(ctx, roomID, tokens[1])
	require.NoError(t, err)

	remaining, err := svc.RemoveParticipant(ctx, RemoveParticipantInput{
		RoomID: roomID, OwnerToken: ownerToken, ParticipantID: self.Participant.ID,
	})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, p := range remaining {
		assert.NotEqual(t, self.Participant.ID, p.ID)
	}

	_, err = svc.GetSelf(ctx, roomID, tokens[1])
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	types := notifier.types()
	assert.Equal(t, models.EventParticipantRemoved, types[len(types)-1])
	assert.Equal(t, []string{self.Participant.ID}, notifier.closed)
}

func TestRoomService_RemoveParticipant_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 1)

	host, err := svc.GetSelf(ctx, roomID, ownerToken)
	require.NoError(t, err)
	guest, err := svc.GetSelf(ctx, roomID, tokens[1])
	require.NoError(t, err)

	tests := []struct {
		name  string
		input RemoveParticipantInput
		want  error
	}{
		{"room not found", RemoveParticipantInput{RoomID: "nope00", OwnerToken: ownerToken, ParticipantID: guest.Participant.ID}, ErrRoomNotFound},
		{"owner with valid token", RemoveParticipantInput{RoomID: roomID, OwnerToken: ownerToken, ParticipantID: host.Participant.ID}, ErrCannotRemoveOwner},
		{"owner with invalid token", RemoveParticipantInput{RoomID: roomID, OwnerToken: "wrong", ParticipantID: host.Participant.ID}, ErrCannotRemoveOwner},
		{"guest token is not owner", RemoveParticipantInput{RoomID: roomID, OwnerToken: tokens[1], ParticipantID: guest.Participant.ID}, ErrNotAuthorized},
		{"empty token", RemoveParticipantInput{RoomID: roomID, OwnerToken: "", ParticipantID: guest.Participant.ID}, ErrNotAuthorized},
		{"unknown participant", RemoveParticipantInput{RoomID: roomID, OwnerToken: ownerToken, ParticipantID: "ghost"}, ErrParticipantNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RemoveParticipant(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)
	_, err = svc.RemoveParticipant(ctx, RemoveParticipantInput{RoomID: roomID, OwnerToken: ownerToken, ParticipantID: guest.Participant.ID})
	assert.ErrorIs(t, err, ErrRoomAlreadyStarted)

	participants, err := svc.GetParticipants(ctx, roomID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestRoomService_StartRoom_InsufficientParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, _ := createRoomWith(t, svc, 0)

	_, err := svc.StartRoom(ctx, roomID, ownerToken)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	room, err := svc.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Nil(t, room.StartedAt)
}

func TestRoomService_StartRoom_TwoParticipantsAreForced(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 1)

	result, err := svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)
	assert.Equal(t, 2, result.AssignmentsCount)
	assert.False(t, result.StartedAt.IsZero())

	alice, err := svc.GetSelf(ctx, roomID, tokens[0])
	require.NoError(t, err)
	bob, err := svc.GetSelf(ctx, roomID, tokens[1])
	require.NoError(t, err)

	require.NotNil(t, alice.AssignedTo)
	require.NotNil(t, bob.AssignedTo)
	assert.Equal(t, bob.Participant.ID, alice.AssignedTo.ID)
	assert.Equal(t, alice.Participant.ID, bob.AssignedTo.ID)

	room, err := svc.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, room.StartedAt)
	assert.True(t, room.StartedAt.Equal(result.StartedAt))

	types := notifier.types()
	assert.Equal(t, models.EventRoomStarted, types[len(types)-1])
}

func TestRoomService_StartRoom_StartedAtPrecision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, _ := createRoomWith(t, svc, 1)

	taipei := time.FixedZone("CST", 8*60*60)
	svc.now = func() time.Time { return time.Date(2025, 12, 24, 20, 30, 15, 123456789, taipei) }

	result, err := svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)

	want := time.Date(2025, 12, 24, 12, 30, 15, 123000000, time.UTC)
	assert.Equal(t, want, result.StartedAt)

	room, err := svc.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, room.StartedAt)
	assert.Equal(t, result.StartedAt, *room.StartedAt)
}

func TestRoomService_StartRoom_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 2)

	_, err := svc.StartRoom(ctx, "nope00", ownerToken)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.StartRoom(ctx, roomID, tokens[1])
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)

	_, err = svc.StartRoom(ctx, roomID, ownerToken)
	assert.ErrorIs(t, err, ErrRoomAlreadyStarted)
}

// 兩個服務實例共用同一個儲存，繞過程序內的房間鎖，只靠條件式寫入決定勝負
func TestRoomService_StartRoom_ConcurrentStartsOneWinner(t *testing.T) {
	repo := repository.NewMemoryRoomRepository(100)
	services := []*RoomService{NewRoomService(repo, nil), NewRoomService(repo, nil)}
	roomID, ownerToken, tokens := createRoomWith(t, services[0], 5)
	ctx := context.Background()

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []*StartRoomResult
		failures  []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(svc *RoomService) {
			defer wg.Done()
			result, err := svc.StartRoom(ctx, roomID, ownerToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes = append(successes, result)
		}(services[i%2])
	}
	wg.Wait()

	require.Len(t, successes, 1)
	require.Len(t, failures, callers-1)
	for _, err := range failures {
		assert.ErrorIs(t, err, ErrRoomAlreadyStarted)
	}

	stored, err := repo.FindByID(ctx, roomID)
	require.NoError(t, err)

	// 每個人看到的收禮者都來自同一組抽籤結果
	for _, svc := range services {
		for _, token := range tokens {
			self, err := svc.GetSelf(ctx, roomID, token)
			require.NoError(t, err)
			require.NotNil(t, self.AssignedTo)
			assert.Equal(t, stored.Assignments[self.Participant.ID], self.AssignedTo.ID)
		}
	}
}

func TestRoomService_StartRoom_ConcurrentWithJoins(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, _ := createRoomWith(t, svc, 2)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.JoinRoom(ctx, roomID, JoinRoomInput{Name: fmt.Sprintf("late %d", i)})
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.StartRoom(ctx, roomID, ownerToken)
		assert.NoError(t, err)
	}()
	wg.Wait()

	room, err := repo.FindByID(ctx, roomID)
	require.NoError(t, err)
	require.True(t, room.IsStarted())

	// 抽籤結果涵蓋且只涵蓋房間中的每一位參與者
	assert.Len(t, room.Assignments, len(room.Participants))
	for _, p := range room.Participants {
		to, ok := room.Assignments[p.ID]
		require.True(t, ok, "participant %s has no assignment", p.ID)
		assert.NotEqual(t, p.ID, to)
	}
}

func TestRoomService_StartRoom_RetriesOnVersionConflict(t *testing.T) {
	repo := new(mockRoomRepository)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()

	room := &models.Room{
		ID:         "conf01",
		OwnerToken: "owner",
		Participants: []models.Participant{
			{ID: "a", Token: "owner"},
			{ID: "b", Token: "tb"},
			{ID: "c", Token: "tc"},
		},
		Version: 4,
	}
	repo.On("FindByID", ctx, "conf01").Return(room, nil)
	repo.On("SetAssignments", ctx, "conf01", int64(4), mock.Anything, mock.Anything).Return(repository.ErrVersionConflict).Once()
	repo.On("SetAssignments", ctx, "conf01", int64(4), mock.Anything, mock.Anything).Return(nil).Once()

	result, err := svc.StartRoom(ctx, "conf01", "owner")

	require.NoError(t, err)
	assert.Equal(t, 3, result.AssignmentsCount)
	repo.AssertNumberOfCalls(t, "FindByID", 2)
	repo.AssertNumberOfCalls(t, "SetAssignments", 2)
}

func TestRoomService_StartRoom_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := new(mockRoomRepository)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()

	room := &models.Room{
		ID:           "conf02",
		OwnerToken:   "owner",
		Participants: []models.Participant{{ID: "a", Token: "owner"}, {ID: "b", Token: "tb"}},
	}
	repo.On("FindByID", ctx, "conf02").Return(room, nil)
	repo.On("SetAssignments", ctx, "conf02", int64(0), mock.Anything, mock.Anything).Return(repository.ErrVersionConflict)

	_, err := svc.StartRoom(ctx, "conf02", "owner")

	assert.ErrorIs(t, err, ErrStorageFailure)
	repo.AssertNumberOfCalls(t, "SetAssignments", maxStartAttempts)
}

func TestRoomService_GetSelf(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 1)

	_, err := svc.GetSelf(ctx, roomID, "unknown")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = svc.GetSelf(ctx, roomID, "")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = svc.GetSelf(ctx, "nope00", ownerToken)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	host, err := svc.GetSelf(ctx, roomID, ownerToken)
	require.NoError(t, err)
	assert.True(t, host.Participant.IsOwner)
	assert.Nil(t, host.AssignedTo)

	guest, err := svc.GetSelf(ctx, roomID, tokens[1])
	require.NoError(t, err)
	assert.False(t, guest.Participant.IsOwner)
	assert.Nil(t, guest.AssignedTo)
}

func TestRoomService_GetSelf_ReconstructsAssignments(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 7)

	result, err := svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)
	require.Equal(t, 8, result.AssignmentsCount)

	reconstructed := make(map[string]string)
	received := make(map[string]int)
	for _, token := range tokens {
		self, err := svc.GetSelf(ctx, roomID, token)
		require.NoError(t, err)
		require.NotNil(t, self.AssignedTo)
		assert.NotEqual(t, self.Participant.ID, self.AssignedTo.ID)
		reconstructed[self.Participant.ID] = self.AssignedTo.ID
		received[self.AssignedTo.ID]++
	}

	stored, err := repo.FindByID(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, stored.Assignments, reconstructed)
	assert.Len(t, received, 8)
	for id, n := range received {
		assert.Equal(t, 1, n, "participant %s received %d gifts", id, n)
	}
}

func TestRoomService_GetRoomAndParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, _, _ := createRoomWith(t, svc, 2)

	room, err := svc.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Len(t, room.Participants, 3)

	missing, err := svc.GetRoom(ctx, "nope00")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	participants, err := svc.GetParticipants(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", participants[0].Name)
	assert.Equal(t, "Guest 0", participants[1].Name)

	_, err = svc.GetParticipants(ctx, "nope00")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomService_GetRoom_StorageFailure(t *testing.T) {
	repo := new(mockRoomRepository)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()
	repo.On("FindByID", ctx, "room01").Return(nil, errors.New("timeout"))

	_, err := svc.GetRoom(ctx, "room01")
	assert.ErrorIs(t, err, ErrStorageFailure)

	_, err = svc.GetSelf(ctx, "room01", "token")
	assert.ErrorIs(t, err, ErrStorageFailure)
}

func TestRoomService_UpdateWishlist(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, tokens := createRoomWith(t, svc, 1)

	wishlist, err := svc.UpdateWishlist(ctx, UpdateWishlistInput{
		RoomID:   roomID,
		Token:    tokens[1],
		Wishlist: []string{"  warm socks ", "", "   ", "a good book"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"warm socks", "a good book"}, wishlist)

	_, err = svc.StartRoom(ctx, roomID, ownerToken)
	require.NoError(t, err)

	// 兩人房間中房主一定抽到另一位
	host, err := svc.GetSelf(ctx, roomID, ownerToken)
	require.NoError(t, err)
	require.NotNil(t, host.AssignedTo)
	assert.Equal(t, []string{"warm socks", "a good book"}, host.AssignedTo.Wishlist)
	assert.Empty(t, host.Participant.Wishlist)

	// 抽籤後仍可修改
	_, err = svc.UpdateWishlist(ctx, UpdateWishlistInput{RoomID: roomID, Token: ownerToken, Wishlist: []string{"tea"}})
	require.NoError(t, err)

	assert.Contains(t, notifier.types(), models.EventWishlistUpdated)
}

func TestRoomService_UpdateWishlist_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	roomID, ownerToken, _ := createRoomWith(t, svc, 0)

	_, err := svc.UpdateWishlist(ctx, UpdateWishlistInput{RoomID: roomID, Token: "ghost", Wishlist: []string{"x"}})
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = svc.UpdateWishlist(ctx, UpdateWishlistInput{RoomID: "nope00", Token: ownerToken, Wishlist: []string{"x"}})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	tooMany := make([]string, maxWishlistItems+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("item %d", i)
	}
	_, err = svc.UpdateWishlist(ctx, UpdateWishlistInput{RoomID: roomID, Token: ownerToken, Wishlist: tooMany})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateWishlist(ctx, UpdateWishlistInput{RoomID: roomID, Token: ownerToken, Wishlist: []string{strings.Repeat("z", maxWishlistItemSize+1)}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoomService_EvictedRoomIsNotFound(t *testing.T) {
	repo := repository.NewMemoryRoomRepository(1)
	svc := NewRoomService(repo, nil)
	ctx := context.Background()

	first, err := svc.CreateRoom(ctx, CreateRoomInput{RoomName: "first", HostName: "Alice"})
	require.NoError(t, err)
	_, err = svc.CreateRoom(ctx, CreateRoomInput{RoomName: "second", HostName: "Bob"})
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, first.Room.ID, JoinRoomInput{Name: "Carol"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = svc.StartRoom(ctx, first.Room.ID, first.OwnerToken)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = svc.GetSelf(ctx, first.Room.ID, first.OwnerToken)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
