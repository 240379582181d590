package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	appservice "github.com/wolfitem/ai-digest/internal/application/service"
	"github.com/wolfitem/ai-digest/internal/domain/service"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

var dryRun bool

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "抓取订阅源、生成摘要并推送到Telegram",
	Long: `执行一次完整流程：抓取订阅源，保留最近24小时内的文章，
生成CSV交给大模型摘要，再按长度分段依次推送到Telegram。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPipelineConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg.DryRun = dryRun

		if err := service.NewValidator().ValidatePipelineConfig(cfg); err != nil {
			logger.Error("配置校验失败", "error", err)
			return fmt.Errorf("配置校验失败: %w", err)
		}

		record, err := appservice.NewDigestService(cfg).Run(cmd.Context())
		switch {
		case errors.Is(err, appservice.ErrNoEntries):
			fmt.Println("No relevant articles from the last 24 hours.")
			return nil
		case errors.Is(err, appservice.ErrEmptySummary):
			fmt.Println("No relevant summaries were generated.")
			return nil
		case err != nil:
			logger.Error("处理失败", "error", err)
			return fmt.Errorf("处理失败: %w", err)
		}

		logger.Info("处理成功", "entries", record.Entries, "chunks", record.ChunksTotal, "sent", record.ChunksSent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只打印分段后的摘要，不推送")
}
