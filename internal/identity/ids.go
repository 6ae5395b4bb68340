package identity

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newUserID builds ids shaped like user_<unix-ms>_<9 base36 chars>.
func newUserID(now time.Time) string {
	raw := uuid.New()
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[int(raw[i])%len(base36)]
	}
	return "user_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
