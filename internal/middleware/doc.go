// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 這個包包含 session 驗證、限流與請求日誌三種中間件，
// 在請求進入處理器之前或之後執行跨請求的工作。
package middleware
