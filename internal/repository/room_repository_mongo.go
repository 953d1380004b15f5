package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secret_santa/internal/models"
	"secret_santa/internal/storage"
)

// roomDocument 是房間在 MongoDB 中的文件，參與者內嵌於同一份文件
type roomDocument struct {
	ID           string                `bson:"_id"`
	Name         string                `bson:"name"`
	CreatedAt    time.Time             `bson:"createdAt"`
	OwnerToken   string                `bson:"ownerToken"`
	Participants []participantDocument `bson:"participants"`
	StartedAt    *time.Time            `bson:"startedAt,omitempty"`
	Assignments  map[string]string     `bson:"assignments,omitempty"`
	Version      int64                 `bson:"version"`
}

type participantDocument struct {
	ID       string    `bson:"id"`
	Name     string    `bson:"name"`
	JoinedAt time.Time `bson:"joinedAt"`
	Token    string    `bson:"token"`
	Wishlist []string  `bson:"wishlist,omitempty"`
}

// mongoRoomRepository 以單一文件的原子更新實作 RoomRepository
type mongoRoomRepository struct {
	rooms *mongo.Collection
}

func NewMongoRoomRepository(db *storage.MongoDB, collection string) *mongoRoomRepository {
	if db == nil {
		panic("mongo connection cannot be nil for mongoRoomRepository")
	}
	if collection == "" {
		collection = "rooms"
	}
	return &mongoRoomRepository{rooms: db.Database.Collection(collection)}
}

// EnsureIndexes 建立 createdAt 的 TTL 索引，retention <= 0 時不建立
func (r *mongoRoomRepository) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return nil
	}
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("rooms_ttl").SetExpireAfterSeconds(int32(retention.Seconds())),
	}
	if _, err := r.rooms.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("mongo: create ttl index: %w", err)
	}
	return nil
}

func (r *mongoRoomRepository) Insert(ctx context.Context, room *models.Room) error {
	_, err := r.rooms.InsertOne(ctx, toRoomDocument(room))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("mongo: insert room %s: %w", room.ID, err)
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromRoomDocument(doc), nil
}

func (r *mongoRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.rooms.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo: count rooms by id %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *mongoRoomRepository) AppendParticipant(ctx context.Context, roomID string, participant models.Participant) error {
	filter := bson.M{"_id": roomID, "startedAt": bson.M{"$exists": false}}
	update := bson.M{
		"$push": bson.M{"participants": toParticipantDocument(participant)},
		"$inc":  bson.M{"version": 1},
	}
	result, err := r.rooms.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo: append participant to room %s: %w", roomID, err)
	}
	if result.MatchedCount == 0 {
		return r.explainRejectedWrite(ctx, roomID, "")
	}
	return nil
}

func (r *mongoRoomRepository) RemoveParticipant(ctx context.Context, roomID, participantID string) error {
	filter := bson.M{
		"_id":             roomID,
		"startedAt":       bson.M{"$exists": false},
		"participants.id": participantID,
	}
	update := bson.M{
		"$pull": bson.M{"participants": bson.M{"id": participantID}},
		"$inc":  bson.M{"version": 1},
	}
	result, err := r.rooms.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo: remove participant %s: %w", participantID, err)
	}
	if result.MatchedCount == 0 {
		return r.explainRejectedWrite(ctx, roomID, participantID)
	}
	return nil
}

func (r *mongoRoomRepository) SetAssignments(ctx context.Context, roomID string, expectedVersion int64, assignments map[string]string, startedAt time.Time) error {
	filter := bson.M{
		"_id":       roomID,
		"version":   expectedVersion,
		"startedAt": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"assignments": assignments, "startedAt": startedAt}}
	result, err := r.rooms.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo: start room %s: %w", roomID, err)
	}
	if result.MatchedCount == 0 {
		return r.explainRejectedWrite(ctx, roomID, "")
	}
	return nil
}

func (r *mongoRoomRepository) UpdateWishlist(ctx context.Context, roomID, participantID string, wishlist []string) error {
	filter := bson.M{"_id": roomID, "participants.id": participantID}
	update := bson.M{"$set": bson.M{"participants.$.wishlist": wishlist}}
	result, err := r.rooms.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo: update wishlist of %s: %w", participantID, err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.load(ctx, roomID); err != nil {
			return err
		}
		return ErrParticipantNotFound
	}
	return nil
}

func (r *mongoRoomRepository) load(ctx context.Context, id string) (*roomDocument, error) {
	var doc roomDocument
	err := r.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("mongo: find room %s: %w", id, err)
	}
	return &doc, nil
}

// explainRejectedWrite 在條件式更新沒有符合任何文件時找出原因
func (r *mongoRoomRepository) explainRejectedWrite(ctx context.Context, roomID, participantID string) error {
	doc, err := r.load(ctx, roomID)
	if err != nil {
		return err
	}
	if doc.StartedAt != nil {
		return ErrRoomStarted
	}
	if participantID != "" {
		return ErrParticipantNotFound
	}
	return ErrVersionConflict
}

func toRoomDocument(room *models.Room) roomDocument {
	doc := roomDocument{
		ID:           room.ID,
		Name:         room.Name,
		CreatedAt:    room.CreatedAt,
		OwnerToken:   room.OwnerToken,
		Participants: make([]participantDocument, len(room.Participants)),
		StartedAt:    room.StartedAt,
		Assignments:  room.Assignments,
		Version:      room.Version,
	}
	for i, p := range room.Participants {
		doc.Participants[i] = toParticipantDocument(p)
	}
	return doc
}

func toParticipantDocument(p models.Participant) participantDocument {
	return participantDocument{
		ID:       p.ID,
		Name:     p.Name,
		JoinedAt: p.JoinedAt,
		Token:    p.Token,
		Wishlist: p.Wishlist,
	}
}

func fromRoomDocument(doc *roomDocument) *models.Room {
	room := &models.Room{
		ID:           doc.ID,
		Name:         doc.Name,
		CreatedAt:    doc.CreatedAt,
		OwnerToken:   doc.OwnerToken,
		Participants: make([]models.Participant, len(doc.Participants)),
		StartedAt:    doc.StartedAt,
		Assignments:  doc.Assignments,
		Version:      doc.Version,
	}
	for i, p := range doc.Participants {
		room.Participants[i] = models.Participant{
			ID:       p.ID,
			Name:     p.Name,
			JoinedAt: p.JoinedAt,
			Token:    p.Token,
			Wishlist: p.Wishlist,
		}
	}
	return room
}

var _ RoomRepository = (*mongoRoomRepository)(nil)
