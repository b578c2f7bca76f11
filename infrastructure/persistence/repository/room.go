package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roomRepository struct {
	database *gorm.DB
	tracer   trace.Tracer
}

func NewRoomRepository(database *gorm.DB, tracer trace.Tracer) repository.RoomRepository {
	return &roomRepository{
		database: database,
		tracer:   tracer,
	}
}

func (r *roomRepository) Upsert(ctx context.Context, record *model.RoomRecord) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Upsert")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", record.ID.String()),
		attribute.String("room.players", record.Players),
	)

	record.CreatedAt = record.CreatedAt.UTC()
	record.LastActiveAt = record.LastActiveAt.UTC()

	err := r.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(record).
		Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert room")
		return fmt.Errorf("upsert room %s: %w", record.ID, err)
	}

	span.SetStatus(codes.Ok, "room upserted successfully")
	return nil
}

func (r *roomRepository) UpdateFields(ctx context.Context, id model.ID, fields map[string]any) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.UpdateFields")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", id.String()),
		attribute.Int("fields.count", len(fields)),
	)

	if len(fields) == 0 {
		span.SetStatus(codes.Ok, "nothing to update")
		return nil
	}

	result := r.database.WithContext(ctx).
		Model(&model.RoomRecord{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, "failed to update room")
		return fmt.Errorf("update room %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		span.SetAttributes(attribute.Bool("room.found", false))
		span.SetStatus(codes.Error, "room not found")
		return fmt.Errorf("update room %s: %w", id, model.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "room updated successfully")
	return nil
}

func (r *roomRepository) Delete(ctx context.Context, id model.ID) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", id.String()))

	result := r.database.WithContext(ctx).Delete(&model.RoomRecord{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, "failed to delete room")
		return fmt.Errorf("delete room %s: %w", id, result.Error)
	}

	span.SetAttributes(attribute.Int64("rows.deleted", result.RowsAffected))
	span.SetStatus(codes.Ok, "room deleted successfully")
	return nil
}

func (r *roomRepository) All(ctx context.Context) ([]model.RoomRecord, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.All")
	defer span.End()

	var records []model.RoomRecord
	err := r.database.WithContext(ctx).
		Order("created_at ASC").
		Find(&records).
		Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms")
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	span.SetAttributes(attribute.Int("rooms.total_count", len(records)))
	span.SetStatus(codes.Ok, "rooms retrieved successfully")
	return records, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id model.ID) (*model.RoomRecord, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", id.String()))

	var record model.RoomRecord
	err := r.database.WithContext(ctx).
		Where("id = ?", id).
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.Bool("room.found", false))
			span.SetStatus(codes.Error, "room not found")
			return nil, fmt.Errorf("get room %s: %w", id, model.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get room")
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("room.found", true))
	span.SetStatus(codes.Ok, "room retrieved successfully")
	return &record, nil
}
