package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/docquery"
	mysqlpkg "github.com/JoeShih716/case-common/pkg/mysql"
)

// ensure interface compliance
var _ ports.DocumentStore = (*DocumentRepository)(nil)

// documentRow 是 documents 表的一列；集合路徑 + ID 為複合主鍵
type documentRow struct {
	Collection string            `gorm:"primaryKey;size:512"`
	ID         string            `gorm:"primaryKey;size:191"`
	Data       datatypes.JSONMap `gorm:"not null"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

// data 把 JSONMap 掃描出的 json.Number 轉回與其他後端一致的 int64 / float64
func (row documentRow) data() (map[string]any, error) {
	data, err := docquery.Normalize(map[string]any(row.Data))
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", row.ID, err)
	}
	return data, nil
}

// DocumentRepository 以單一 JSON 欄位的表實作 DocumentStore
type DocumentRepository struct {
	client *mysqlpkg.Client
}

// NewDocumentRepository 建立 MySQL 文件庫，並確保 documents 表存在
func NewDocumentRepository(client *mysqlpkg.Client) (*DocumentRepository, error) {
	if err := client.DB().AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &DocumentRepository{
		client: client,
	}, nil
}

func (r *DocumentRepository) NewID(_ string) string {
	return uuid.NewString()
}

func (r *DocumentRepository) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := r.NewID(collection)
	if err := r.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (r *DocumentRepository) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	return r.Commit(ctx, []ports.Write{{
		Kind:       ports.WriteSet,
		Collection: collection,
		ID:         id,
		Data:       data,
		Merge:      merge,
	}})
}

// Get 根據集合與 ID 取得文件
func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (ports.Document, bool, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return ports.Document{}, false, err
	}
	var row documentRow
	err := r.client.DB().WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Document{}, false, nil
		}
		return ports.Document{}, false, err
	}
	data, err := row.data()
	if err != nil {
		return ports.Document{}, false, err
	}
	return ports.Document{ID: row.ID, Data: data}, true, nil
}

// Query 取出整個集合後在 client 端比對 filters
func (r *DocumentRepository) Query(ctx context.Context, collection string, filters []ports.Filter) ([]ports.Document, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return nil, err
	}
	compiled, err := docquery.Compile(filters)
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := r.client.DB().WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.Document, 0, len(rows))
	for _, row := range rows {
		data, err := row.data()
		if err != nil {
			return nil, err
		}
		if compiled.Match(data) {
			out = append(out, ports.Document{ID: row.ID, Data: data})
		}
	}
	return out, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	return r.Commit(ctx, []ports.Write{{Kind: ports.WriteDelete, Collection: collection, ID: id}})
}

// Commit 在單一資料庫交易中套用所有寫入
func (r *DocumentRepository) Commit(ctx context.Context, writes []ports.Write) error {
	if len(writes) == 0 {
		return nil
	}
	prepared := make([]ports.Write, 0, len(writes))
	for _, w := range writes {
		p, err := docquery.Prepare(w)
		if err != nil {
			return err
		}
		prepared = append(prepared, p)
	}
	return r.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range prepared {
			if err := apply(tx, w); err != nil {
				return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, err)
			}
		}
		return nil
	})
}

func apply(tx *gorm.DB, w ports.Write) error {
	if w.Kind == ports.WriteDelete {
		return tx.Where("collection = ? AND id = ?", w.Collection, w.ID).Delete(&documentRow{}).Error
	}
	data := w.Data
	if w.Merge {
		var row documentRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", w.Collection, w.ID).
			First(&row).Error
		switch {
		case err == nil:
			cur, err := row.data()
			if err != nil {
				return err
			}
			data = docquery.Merge(cur, w.Data)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	row := documentRow{
		Collection: w.Collection,
		ID:         w.ID,
		Data:       datatypes.JSONMap(data),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (r *DocumentRepository) Close() error {
	return r.client.Close()
}
