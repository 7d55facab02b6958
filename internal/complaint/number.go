package complaint

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/storage"
)

// GenerateNumber returns the next complaint number of the year of now,
// CPL-<year>-<sequence>. The sequence continues from the highest number
// already issued that year, soft-deleted complaints included.
func GenerateNumber(ctx context.Context, st storage.Storage, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", config.ComplaintNumberPrefix, now.Year())

	numbers, err := st.ComplaintNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	base := 0
	for _, number := range numbers {
		if len(number) < config.ComplaintSequenceLen {
			continue
		}
		seq, err := strconv.Atoi(number[len(number)-config.ComplaintSequenceLen:])
		if err != nil {
			continue
		}
		base = max(base, seq)
	}

	return fmt.Sprintf("%s%0*d", prefix, config.ComplaintSequenceLen, base+1), nil
}
