package dependency

import (
	"github.com/hilthontt/roombot/infrastructure/persistence/repository"
)

func (c *Container) initRepositories() {
	c.RoomRepo = repository.NewRoomRepository(c.DB, c.Tracer)

	c.Logger.Info("Repositories initialized successfully")
}
