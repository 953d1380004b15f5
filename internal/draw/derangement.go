// Package draw 負責交換禮物的抽籤演算法。
//
// Derange 先以 Fisher–Yates 洗牌，再以單次由左至右的修正步驟消除所有固定點，
// 因此結果一定是沒有人抽到自己的一對一對應，但並非在所有錯排中均勻分佈。
package draw

import (
	"errors"
	"math/rand/v2"
)

var (
	// ErrTooFewParticipants 少於兩人時不存在合法的錯排
	ErrTooFewParticipants = errors.New("draw: at least two participants are required")
	// ErrDuplicateID 輸入中出現重複的參與者 ID
	ErrDuplicateID = errors.New("draw: participant ids must be distinct")
)

// IntN 回傳 [0, n) 之間的隨機整數，預設使用 math/rand/v2 的全域來源
type IntN func(n int) int

// Derange 產生送禮者 ID → 收禮者 ID 的對應，保證沒有人對應到自己。
// intn 為 nil 時使用 rand.IntN。
func Derange(ids []string, intn IntN) (map[string]string, error) {
	if len(ids) < 2 {
		return nil, ErrTooFewParticipants
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return nil, ErrDuplicateID
		}
		seen[id] = struct{}{}
	}
	if intn == nil {
		intn = rand.IntN
	}

	receivers := make([]string, len(ids))
	copy(receivers, ids)
	shuffle(receivers, intn)
	repair(ids, receivers)

	assignments := make(map[string]string, len(ids))
	for i, id := range ids {
		assignments[id] = receivers[i]
	}
	return assignments, nil
}

// shuffle 為原地 Fisher–Yates 洗牌
func shuffle(values []string, intn IntN) {
	for i := len(values) - 1; i > 0; i-- {
		j := intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// repair 將每個固定點與下一個位置（環狀）交換。
// 交換後位置 i 拿到的值必不等於 ids[i]，而位置 i+1 拿到 ids[i] 也必不等於 ids[i+1]，
// 所以單次掃描即可消除所有固定點。
func repair(ids, receivers []string) {
	n := len(ids)
	for i := 0; i < n; i++ {
		if ids[i] == receivers[i] {
			next := (i + 1) % n
			receivers[i], receivers[next] = receivers[next], receivers[i]
		}
	}
}
