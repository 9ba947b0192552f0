// Package firestore 以 Cloud Firestore 實作 DocumentStore，是正式環境的後端。
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/docquery"
)

// Config 定義 Firestore 連線配置；CredentialsJSON 優先於 CredentialsFile，
// 兩者皆空時使用 Application Default Credentials (或 FIRESTORE_EMULATOR_HOST)。
type Config struct {
	ProjectID       string
	CredentialsJSON string
	CredentialsFile string
}

func (c Config) clientOptions() []option.ClientOption {
	switch {
	case c.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.CredentialsJSON))}
	case c.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
	}
	return nil
}

// ensure interface compliance
var _ ports.DocumentStore = (*Store)(nil)

// Store 封裝 *firestore.Client
type Store struct {
	client *firestore.Client
}

// NewStore 透過 Firebase Admin SDK 建立 Firestore 連線
//
// 參數:
//
//	ctx: context.Context - 只用於建立連線
//	cfg: Config - 專案與憑證設定
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	return &Store{client: client}, nil
}

// NewStoreFromClient 包裝既有的 client (例如 emulator 測試)
func NewStoreFromClient(client *firestore.Client) *Store {
	return &Store{client: client}
}

// NewID 在本地產生 Firestore 格式的隨機 ID；路徑不合法時回傳空字串，後續寫入會回報錯誤
func (s *Store) NewID(collection string) string {
	if docquery.ValidateCollection(collection) != nil {
		return ""
	}
	return s.client.Collection(collection).NewDoc().ID
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return "", err
	}
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, nonNil(data)); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	ref, err := s.doc(collection, id)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, nonNil(data), setOptions(merge)...)
	return err
}

func (s *Store) Get(ctx context.Context, collection, id string) (ports.Document, bool, error) {
	ref, err := s.doc(collection, id)
	if err != nil {
		return ports.Document{}, false, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ports.Document{}, false, nil
		}
		return ports.Document{}, false, err
	}
	return ports.Document{ID: snap.Ref.ID, Data: nonNil(snap.Data())}, true, nil
}

// Query 把 filters 轉成 server 端的 Where 條件
func (s *Store) Query(ctx context.Context, collection string, filters []ports.Filter) ([]ports.Document, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return nil, err
	}
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		if err := checkOperator(f.Op); err != nil {
			return nil, err
		}
		q = q.Where(f.Field, string(f.Op), f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()
	out := make([]ports.Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ports.Document{ID: snap.Ref.ID, Data: nonNil(snap.Data())})
	}
	return out, nil
}

// Delete 刪除文件；Firestore 對不存在的文件不回傳錯誤
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ref, err := s.doc(collection, id)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

// Commit 以 WriteBatch 送出；Firestore 拒絕空批次，因此直接回傳
func (s *Store) Commit(ctx context.Context, writes []ports.Write) error {
	if len(writes) == 0 {
		return nil
	}
	batch := s.client.Batch()
	for _, w := range writes {
		ref, err := s.doc(w.Collection, w.ID)
		if err != nil {
			return err
		}
		switch w.Kind {
		case ports.WriteSet:
			batch.Set(ref, nonNil(w.Data), setOptions(w.Merge)...)
		case ports.WriteDelete:
			batch.Delete(ref)
		default:
			return fmt.Errorf("unknown write kind %d", w.Kind)
		}
	}
	_, err := batch.Commit(ctx)
	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}

// doc 先檢查路徑；firestore 的 Collection/Doc 遇到不合法路徑會回傳 nil
func (s *Store) doc(collection, id string) (*firestore.DocumentRef, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := docquery.ValidateID(id); err != nil {
		return nil, err
	}
	return s.client.Collection(collection).Doc(id), nil
}

func setOptions(merge bool) []firestore.SetOption {
	if merge {
		return []firestore.SetOption{firestore.MergeAll}
	}
	return nil
}

func checkOperator(op ports.Operator) error {
	switch op {
	case ports.OpEqual, ports.OpNotEqual, ports.OpLess, ports.OpLessEqual,
		ports.OpGreater, ports.OpGreaterEqual, ports.OpIn, ports.OpNotIn,
		ports.OpArrayContains, ports.OpArrayContainsAny:
		return nil
	}
	return fmt.Errorf("%w: %q", ports.ErrUnsupportedOperator, op)
}

func nonNil(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
