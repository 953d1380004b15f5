package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/middleware"
	"secret_santa/internal/service"
	"secret_santa/internal/utils"
)

// RoomHandler 處理與房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
	signer      *utils.SessionSigner
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, signer *utils.SessionSigner) *RoomHandler {
	return &RoomHandler{roomService: roomService, signer: signer}
}

type createRoomRequest struct {
	RoomName string `json:"roomName"`
	HostName string `json:"hostName" binding:"required"`
}

type joinRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// tokenRequest 用於只需要 token 的請求，token 也可以改由 Bearer session 提供
type tokenRequest struct {
	Token string `json:"token"`
}

type wishlistRequest struct {
	Token    string   `json:"token"`
	Wishlist []string `json:"wishlist"`
}

// CreateRoom 處理創建新房間的請求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input createRoomRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.roomService.CreateRoom(c.Request.Context(), service.CreateRoomInput{
		RoomName: input.RoomName,
		HostName: input.HostName,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	session, ok := h.issueSession(c, result.Room.ID, result.Participant.ID, result.OwnerToken)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"room":        result.Room,
		"token":       result.OwnerToken,
		"session":     session,
		"participant": result.Participant,
	})
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// JoinRoom 處理加入房間的請求
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var input joinRoomRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.roomService.JoinRoom(c.Request.Context(), c.Param("roomId"), service.JoinRoomInput{Name: input.Name})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	session, ok := h.issueSession(c, result.Room.ID, result.Participant.ID, result.Token)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":        result.Room,
		"participant": result.Participant,
		"token":       result.Token,
		"session":     session,
	})
}

// GetParticipants 處理獲取參與者列表的請求
func (h *RoomHandler) GetParticipants(c *gin.Context) {
	participants, err := h.roomService.GetParticipants(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// RemoveParticipant 處理房主移除參與者的請求
func (h *RoomHandler) RemoveParticipant(c *gin.Context) {
	var input tokenRequest
	if !bindOptionalJSON(c, &input) {
		return
	}
	token, ok := requireToken(c, input.Token)
	if !ok {
		return
	}

	participants, err := h.roomService.RemoveParticipant(c.Request.Context(), service.RemoveParticipantInput{
		RoomID:        c.Param("roomId"),
		OwnerToken:    token,
		ParticipantID: c.Param("participantId"),
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// StartRoom 處理開始抽籤的請求
func (h *RoomHandler) StartRoom(c *gin.Context) {
	var input tokenRequest
	if !bindOptionalJSON(c, &input) {
		return
	}
	token, ok := requireToken(c, input.Token)
	if !ok {
		return
	}

	result, err := h.roomService.StartRoom(c.Request.Context(), c.Param("roomId"), token)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startedAt":        result.StartedAt,
		"assignmentsCount": result.AssignmentsCount,
	})
}

// GetSelf 處理參與者查詢自己與抽籤結果的請求
func (h *RoomHandler) GetSelf(c *gin.Context) {
	token, ok := requireToken(c, c.Query("token"))
	if !ok {
		return
	}

	self, err := h.roomService.GetSelf(c.Request.Context(), c.Param("roomId"), token)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"self": self})
}

// UpdateWishlist 處理更新願望清單的請求
func (h *RoomHandler) UpdateWishlist(c *gin.Context) {
	var input wishlistRequest
	if !bindOptionalJSON(c, &input) {
		return
	}
	token, ok := requireToken(c, input.Token)
	if !ok {
		return
	}

	wishlist, err := h.roomService.UpdateWishlist(c.Request.Context(), service.UpdateWishlistInput{
		RoomID:   c.Param("roomId"),
		Token:    token,
		Wishlist: input.Wishlist,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

func (h *RoomHandler) issueSession(c *gin.Context, roomID, participantID, token string) (string, bool) {
	session, err := h.signer.Issue(roomID, participantID, token)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to issue session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", false
	}
	return session, true
}

// bindOptionalJSON 允許沒有 body 的請求（token 由 Bearer session 提供）
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	// chunked 傳輸時 ContentLength 為 -1，空 body 讀到的是 EOF
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// requireToken 優先使用請求中明確帶入的 token，其次是 Bearer session
func requireToken(c *gin.Context, provided string) (string, bool) {
	if provided = strings.TrimSpace(provided); provided != "" {
		return provided, true
	}
	if token, ok := middleware.SessionToken(c); ok {
		return token, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
	return "", false
}
