package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
	"excelsplit/internal/runner"
	"excelsplit/internal/store"
)

// 退出码
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
	exitData          = 3
	exitIO            = 4
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode 按错误类别映射退出码
func exitCode(err error) int {
	var (
		cfgErr  *model.ConfigurationError
		dataErr *model.DataError
		ioErr   *model.IOError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr):
		return exitConfiguration
	case errors.As(err, &dataErr):
		return exitData
	case errors.As(err, &ioErr):
		return exitIO
	}
	return exitFailure
}

type rootOptions struct {
	configPath string
}

type splitOptions struct {
	overrides config.Overrides
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		rootOpts  rootOptions
		splitOpts splitOptions
	)

	cmd := &cobra.Command{
		Use:           "excelsplit",
		Short:         "按工时比例拆分工资表",
		Long:          "按参考表（工时表）中每个员工的项目工时，将源表（工资表）中的金额列按比例拆分到多行。",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(rootOpts, splitOpts, stdout, stderr)
		},
	}

	cmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", config.DefaultConfigPath, "配置文件路径（.yaml/.yml/.toml）")
	addSplitFlags(cmd, &splitOpts)

	cmd.AddCommand(
		newSplitCmd(&rootOpts, stdout, stderr),
		newCheckCmd(&rootOpts, stdout),
		newServeCmd(&rootOpts, stderr),
	)
	return cmd
}

func newSplitCmd(rootOpts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var opts splitOptions
	cmd := &cobra.Command{
		Use:   "split",
		Short: "执行一次拆分（默认命令）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(*rootOpts, opts, stdout, stderr)
		},
	}
	addSplitFlags(cmd, &opts)
	return cmd
}

func addSplitFlags(cmd *cobra.Command, opts *splitOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.overrides.InputPath, "input_path", "", "输入文件路径")
	f.StringVar(&opts.overrides.SourceSheet, "source_sheet", "", "source 表的 sheet 名")
	f.StringVar(&opts.overrides.ReferenceSheet, "reference_sheet", "", "reference 表的 sheet 名")
	f.StringVar(&opts.overrides.OutputPath, "output_path", "", "输出文件路径")
	f.StringVar(&opts.overrides.ResultSheet, "result_sheet", "", "结果表的 sheet 名")
	f.StringVar(&opts.overrides.ZeroHoursPolicy, "zero_hours_policy", "", "总工时为 0 时的处理策略: passthrough/reject")
	f.StringVar(&opts.overrides.HistoryPath, "history", "", "运行记录数据库路径（SQLite）")
}

// loadConfig 加载配置文件，依次应用环境变量与命令行覆盖
func loadConfig(path string, overrides config.Overrides) (config.AppConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.AppConfig{}, err
	}
	return cfg.WithOverrides(overrides), nil
}

// openHistory 按配置打开运行记录；未配置时返回 nil
func openHistory(cfg config.AppConfig) (*store.Store, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	st, err := store.New(cfg.History.Path)
	if err != nil {
		return nil, &model.IOError{Op: "open", Path: cfg.History.Path, Err: err}
	}
	return st, nil
}

func runSplit(rootOpts rootOptions, opts splitOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(rootOpts.configPath, opts.overrides)
	if err != nil {
		return err
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	var journal runner.Journal
	if history != nil {
		defer history.Close()
		journal = history
	}

	r := runner.New(journal, log.New(stderr, "", log.LstdFlags))
	report, err := r.Run(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "输入文件: %s\n", report.InputPath)
	fmt.Fprintf(stdout, "输出文件: %s（sheet: %s）\n", report.OutputPath, report.ResultSheet)
	fmt.Fprintf(stdout, "源表 %d 行，结果表 %d 行（拆分 %d 行，原样输出 %d 行）\n",
		report.SourceRows, report.ResultRows, report.SplitRows, report.PassThroughRows)
	return nil
}
