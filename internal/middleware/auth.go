package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"secret_santa/internal/utils"
)

// 上下文中 session 資訊的鍵
const (
	SessionRoomIDKey        = "sessionRoomID"
	SessionParticipantIDKey = "sessionParticipantID"
	SessionTokenKey         = "sessionToken"
)

// SessionAuth 解析可選的 Authorization: Bearer <session>。
// 沒有帶標頭的請求直接放行，由處理器改從 body 或 query 取得 token。
func SessionAuth(signer *utils.SessionSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// 檢查 Authorization 頭的格式
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {session}"})
			return
		}

		claims, err := signer.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		// session 只能用在簽發它的房間
		if roomID := c.Param("roomId"); roomID != "" && roomID != claims.RoomID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Session does not belong to this room"})
			return
		}

		c.Set(SessionRoomIDKey, claims.RoomID)
		c.Set(SessionParticipantIDKey, claims.ParticipantID)
		c.Set(SessionTokenKey, claims.Token)
		c.Next()
	}
}

// SessionToken 取出 SessionAuth 放入的參與者 token
func SessionToken(c *gin.Context) (string, bool) {
	token := c.GetString(SessionTokenKey)
	return token, token != ""
}
