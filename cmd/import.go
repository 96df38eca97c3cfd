package main

import (
	"fmt"
	"os"

	"LifeStats/internal/alias"
	"LifeStats/internal/api"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func importFormsCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-forms <file.csv>",
		Short: "Import a Google Forms CSV export into bathroom events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("打开 CSV 文件失败: %w", err)
			}
			defer f.Close()

			// 导入前先加载别名，保证 normalized_who 与在线写入一致
			svcs := api.NewServices(a.db, a.cfg, alias.NewRegistry(nil), nil, a.logger)
			if err := svcs.Aliases.Load(cmd.Context()); err != nil {
				return err
			}
			result, err := svcs.Imports.ImportFormsCSV(cmd.Context(), f)
			if err != nil {
				return err
			}

			fields := logrus.Fields{
				"file":     args[0],
				"imported": result.Imported,
				"skipped":  result.Skipped,
				"invalid":  result.Invalid,
			}
			if result.Batch != nil {
				fields["batch_uuid"] = result.Batch.BatchUUID
			}
			a.logger.WithFields(fields).Info("Google Forms 数据导入完成")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d events (%d skipped, %d invalid)\n",
				result.Imported, result.Skipped, result.Invalid)
			return nil
		},
	}
}
