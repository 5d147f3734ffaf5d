package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
	"excelsplit/internal/runner"
	"excelsplit/internal/server"
	"excelsplit/internal/service/excel"
	"excelsplit/internal/util"
)

func newCheckCmd(rootOpts *rootOptions, stdout io.Writer) *cobra.Command {
	var (
		inputPath string
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "列出输入文件中各 sheet 的表头",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts.configPath, config.Overrides{InputPath: inputPath})
			if err != nil {
				return err
			}
			return runCheck(cfg, all, stdout)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input_path", "", "输入文件路径")
	cmd.Flags().BoolVar(&all, "all", false, "列出全部 sheet，而不只是配置中的源表与参考表")
	return cmd
}

func runCheck(cfg config.AppConfig, all bool, stdout io.Writer) error {
	if cfg.Input.Path == "" {
		return &model.ConfigurationError{Field: "input.path", Message: "required field is missing"}
	}
	wb, err := excel.Open(cfg.Input.Path)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheets, err := wb.GetSheets()
	if err != nil {
		return &model.IOError{Op: "read", Path: cfg.Input.Path, Err: err}
	}

	wanted := map[string]bool{
		cfg.Input.Sheet.Source.Name:    true,
		cfg.Input.Sheet.Reference.Name: true,
	}
	found := 0
	for _, s := range sheets {
		if !all && !wanted[s.Name] {
			continue
		}
		found++
		fmt.Fprintf(stdout, "[%s] %d 行\n", s.Name, s.RowCount)
		fmt.Fprintf(stdout, "  表头: %s\n", strings.Join(s.Headers, " | "))
	}
	if found == 0 && !all {
		return &model.ConfigurationError{
			Field:   "input.sheet.source.name",
			Sheet:   cfg.Input.Sheet.Source.Name,
			Message: "source sheet does not exist",
		}
	}
	return nil
}

func newServeCmd(rootOpts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		port int
		dev  bool
		open bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts.configPath, config.Overrides{})
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				log.Printf("配置文件不存在，使用默认配置: %v", err)
				cfg = config.DefaultConfig()
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if dev {
				cfg.Server.DevMode = true
			}
			return runServe(cfg, open, stderr)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "服务端口（覆盖配置文件）")
	cmd.Flags().BoolVar(&dev, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&open, "open", false, "启动后打开浏览器")
	return cmd
}

func runServe(cfg config.AppConfig, open bool, stderr io.Writer) error {
	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	var journal runner.Journal
	if history != nil {
		defer history.Close()
		journal = history
	}

	fmt.Println("==========================================")
	fmt.Println("  ExcelSplit - 工资按工时拆分服务")
	fmt.Println("==========================================")

	srv := server.NewServer(cfg, runner.New(journal, log.New(stderr, "", log.LstdFlags)), history)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	if open {
		if url, err := util.OpenStatusPage(cfg.Server.Port); err != nil {
			log.Printf("%v", err)
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return &model.IOError{Op: "listen", Path: addr, Err: err}
	case <-quit:
		fmt.Println("\n正在关闭服务...")
	}
	return nil
}
