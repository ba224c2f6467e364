package import_batch

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	batchArtifactPrefix  = "import_batch_"
	batchArtifactSuffix  = ".json"
	reportArtifactPrefix = "import_errors_"
	reportArtifactSuffix = ".csv"
)

// NewID 時刻とランダム値から成果物IDを生成する
func NewID(now time.Time) string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(now), rand.Reader).String())
}

// ParseID 外部から渡されたIDを検証して正規化する
func ParseID(id string) (string, error) {
	parsed, err := ulid.ParseStrict(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("invalid artifact id %q: %w", id, err)
	}
	return strings.ToLower(parsed.String()), nil
}

// BatchArtifactName 一時バッチの保存名を返す
func BatchArtifactName(id string) string {
	return batchArtifactPrefix + id + batchArtifactSuffix
}

// ReportArtifactName エラーレポートの保存名を返す
func ReportArtifactName(id string) string {
	return reportArtifactPrefix + id + reportArtifactSuffix
}
