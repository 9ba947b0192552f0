package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JoeShih716/case-common/internal/app/docstore"
	"github.com/JoeShih716/case-common/internal/core/domain"
	"github.com/JoeShih716/case-common/internal/core/ports"
)

// Report 匯入後每個箱子目前的有效禮物數
type Report struct {
	Cases       int
	Gifts       int
	ActiveGifts map[string]int // case id -> 有效禮物數
}

// Seeder 把目錄寫入文件資料庫
type Seeder struct {
	svc    *docstore.Service
	logger *slog.Logger
}

func NewSeeder(svc *docstore.Service, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{svc: svc, logger: logger}
}

// Run 以目錄中的 ID 覆寫箱子，批次新增禮物，最後查詢每個箱子的有效禮物數。
// 同一個目錄重複執行時箱子會被覆寫，但禮物會再新增一份。
func (s *Seeder) Run(ctx context.Context, catalog *Catalog) (*Report, error) {
	report := &Report{ActiveGifts: make(map[string]int, len(catalog.Cases))}

	for _, ce := range catalog.Cases {
		c, err := ce.Record()
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", ce.ID, err)
		}
		if err := s.svc.CreateWithID(ctx, ce.ID, c); err != nil {
			return nil, err
		}
		report.Cases++

		gifts := make([]domain.Record, 0, len(ce.Gifts))
		for _, g := range ce.Gifts {
			rec, err := g.Record(ce.ID)
			if err != nil {
				return nil, fmt.Errorf("case %s: %w", ce.ID, err)
			}
			gifts = append(gifts, rec)
		}
		if err := s.svc.BatchAdd(ctx, gifts...); err != nil {
			return nil, err
		}
		report.Gifts += len(gifts)
		s.logger.InfoContext(ctx, "case seeded", "case_id", ce.ID, "gifts", len(gifts))
	}

	for _, ce := range catalog.Cases {
		active, err := docstore.FetchAll[domain.Gift](ctx, s.svc,
			ports.Where(domain.KeyCaseID, ports.OpEqual, ce.ID),
			ports.Where(domain.KeyIsActive, ports.OpEqual, true),
		)
		if err != nil {
			return nil, err
		}
		report.ActiveGifts[ce.ID] = len(active)
	}
	return report, nil
}
