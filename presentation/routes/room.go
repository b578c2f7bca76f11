package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/roombot/presentation/controllers/room"
)

func RoomRoutes(router *gin.RouterGroup, controller room.RoomController) {
	rooms := router.Group("/rooms")
	{
		rooms.GET("", controller.ListRooms)
		rooms.POST("", controller.CreateRoom)
		rooms.POST("/sweep", controller.Sweep)

		rooms.GET("/:id", controller.GetRoom)
		rooms.DELETE("/:id", controller.DisbandRoom)

		rooms.POST("/:id/join", controller.JoinRoom)
		rooms.POST("/:id/leave", controller.LeaveRoom)
		rooms.POST("/:id/touch", controller.TouchRoom)
	}
}
