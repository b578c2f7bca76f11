package dependency

import (
	"fmt"

	roomUseCase "github.com/hilthontt/roombot/application/usecases/room"
	"github.com/hilthontt/roombot/domain/model"
)

func (c *Container) initUseCases() error {
	var categoryID model.ID
	if c.Config.Rooms.CategoryID != "" {
		id, err := model.ParseID(c.Config.Rooms.CategoryID)
		if err != nil {
			return fmt.Errorf("invalid rooms.categoryId: %w", err)
		}
		categoryID = id
	}

	c.RoomUC = roomUseCase.NewRoomUseCase(c.RoomRepo, c.Platform, c.EventPublisher, c.Metrics, c.Logger, roomUseCase.Options{
		DefaultTimeout:  c.Config.Rooms.Timeout,
		DefaultCapacity: c.Config.Rooms.DefaultCapacity,
		Descriptions:    c.Config.Rooms.Descriptions,
		CategoryID:      categoryID,
	})

	c.Logger.Info("Use cases initialized successfully")
	return nil
}
