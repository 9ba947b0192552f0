package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/JoeShih716/case-common/internal/app/seed"
	"github.com/JoeShih716/case-common/internal/di"
	"github.com/JoeShih716/case-common/internal/kit/bootstrap"
)

func main() {
	catalogPath := flag.String("catalog", "./config/catalog.yaml", "path to the case/gift catalog")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	// 1. 初始化 App (載入 Config, Logger)
	app := bootstrap.NewApp("seed")
	provider := di.NewStoreProvider(app.Config, app.Logger)

	app.RunOnce(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		// 2. 讀取目錄
		catalog, err := seed.LoadCatalog(*catalogPath)
		if err != nil {
			return err
		}

		// 3. 建立共用連線與存取層
		svc, err := provider.ProvideService(ctx)
		if err != nil {
			return err
		}

		// 4. 匯入
		report, err := seed.NewSeeder(svc, app.Logger).Run(ctx, catalog)
		if err != nil {
			return err
		}
		for caseID, n := range report.ActiveGifts {
			slog.InfoContext(ctx, "active gifts", "case_id", caseID, "count", n)
		}
		slog.InfoContext(ctx, "seed complete", "cases", report.Cases, "gifts", report.Gifts)
		return nil
	}, func() {
		if err := provider.Close(); err != nil {
			slog.Error("Failed to close document store", "error", err)
		}
	})
}
