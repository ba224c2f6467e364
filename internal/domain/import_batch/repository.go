package import_batch

import "context"

// ArtifactStore 一時バッチとエラーレポートの保存領域インターフェース
type ArtifactStore interface {
	// Put 成果物を保存
	Put(ctx context.Context, name string, data []byte) error

	// Get 成果物を取得。存在しない場合はErrArtifactNotFoundを返す
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete 成果物を削除。存在しない場合もエラーにしない
	Delete(ctx context.Context, name string) error
}
