// Package api 處理 HTTP 請求路由。
//
// 實際的處理器位於 handlers 子包，它們將 HTTP 請求轉換為 RoomService 的調用，
// 並依照服務層錯誤決定回應的狀態碼。
package api
