// Package seed 從 YAML 目錄檔匯入箱子與禮物。
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/case-common/internal/core/domain"
)

// Catalog 目錄檔的根節點
type Catalog struct {
	Cases []CaseEntry `yaml:"cases"`
}

// CaseEntry 一個箱子與它的禮物；金額皆為最小單位 (百分之一)
type CaseEntry struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Cost     int64       `yaml:"cost"`
	ImageURL string      `yaml:"image_url"`
	IsActive bool        `yaml:"is_active"`
	Gifts    []GiftEntry `yaml:"gifts"`
}

// GiftEntry 只能設定 Reward 或 Asset 其中之一
type GiftEntry struct {
	Name     string      `yaml:"name"`
	Prob     int64       `yaml:"prob"`
	IsActive bool        `yaml:"is_active"`
	Reward   *RewardSpec `yaml:"reward"`
	Asset    *AssetSpec  `yaml:"asset"`
}

type RewardSpec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Volume   int64  `yaml:"volume"`
	PhotoURL string `yaml:"photo_url"`
}

// AssetSpec 外部市集資產；Price 為字串 (例如 "12.50")
type AssetSpec struct {
	ID                       string `yaml:"id"`
	TgID                     string `yaml:"tg_id"`
	CollectionID             string `yaml:"collection_id"`
	ExternalCollectionNumber int64  `yaml:"external_collection_number"`
	Name                     string `yaml:"name"`
	PhotoURL                 string `yaml:"photo_url"`
	Price                    string `yaml:"price"`
}

// LoadCatalog 讀取並解析目錄檔
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析 YAML 並檢查每個箱子的 ID 與禮物 payload
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Cases))
	for i, ce := range c.Cases {
		if ce.ID == "" {
			return nil, fmt.Errorf("case #%d: id is required", i)
		}
		if _, dup := seen[ce.ID]; dup {
			return nil, fmt.Errorf("case %s: duplicate id", ce.ID)
		}
		seen[ce.ID] = struct{}{}
		for j, g := range ce.Gifts {
			if (g.Reward == nil) == (g.Asset == nil) {
				return nil, fmt.Errorf("case %s gift #%d: exactly one of reward or asset is required", ce.ID, j)
			}
		}
	}
	return &c, nil
}

// Record 把箱子轉成記錄
func (ce CaseEntry) Record() (*domain.Case, error) {
	return domain.NewCase(ce.Name, ce.Cost, ce.ImageURL, ce.IsActive)
}

// Record 把禮物轉成記錄，volume 由 payload 決定
func (g GiftEntry) Record(caseID string) (*domain.Gift, error) {
	var payload domain.GiftPayload
	switch {
	case g.Reward != nil:
		payload = &domain.Reward{
			ID:       g.Reward.ID,
			Name:     g.Reward.Name,
			Volume:   g.Reward.Volume,
			PhotoURL: g.Reward.PhotoURL,
		}
	case g.Asset != nil:
		price := g.Asset.Price
		payload = &domain.ExternalAsset{
			ID:                       g.Asset.ID,
			TgID:                     g.Asset.TgID,
			CollectionID:             g.Asset.CollectionID,
			ExternalCollectionNumber: g.Asset.ExternalCollectionNumber,
			Name:                     g.Asset.Name,
			PhotoURL:                 g.Asset.PhotoURL,
			Price:                    &price,
		}
	default:
		return nil, fmt.Errorf("gift %s: %w: reward or asset is required", g.Name, domain.ErrInvalidArgument)
	}

	gift, err := domain.NewGift(domain.Gift{
		CaseID:   caseID,
		Name:     g.Name,
		Prob:     g.Prob,
		IsActive: g.IsActive,
		Type:     payload.GiftType(),
	})
	if err != nil {
		return nil, err
	}
	if err := gift.UpdatePayload(payload); err != nil {
		return nil, fmt.Errorf("gift %s: %w", g.Name, err)
	}
	return gift, nil
}
