package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wolfitem/ai-digest/internal/infrastructure/database"
)

var historyLimit int

// historyCmd 显示最近的运行记录
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "显示最近的运行记录",
	Long:  `从运行记录数据库中读取最近几次运行的统计信息（需要启用 database.enabled）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := database.NewSQLiteDatabase(viper.GetString("database.file_path"))
		if err := db.Init(); err != nil {
			return err
		}
		defer db.Close()

		runs, err := database.NewSQLiteRunRepository(db).RecentRuns(historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSOURCES\tENTRIES\tSENT\tFAILURE\tDURATION")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d/%d\t%s\t%s\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Sources, r.Entries,
				r.ChunksSent, r.ChunksTotal, r.Failure, time.Duration(r.DurationMsec)*time.Millisecond)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "显示的记录数")
}
