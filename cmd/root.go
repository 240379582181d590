package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

var (
	cfgFile string
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ai-digest",
	Short: "RSS新闻摘要推送工具",
	Long: `AI-Digest 抓取配置的RSS/Atom订阅源，保留最近24小时内的文章，
以CSV格式交给大模型生成摘要，并按长度分段推送到Telegram会话。
程序每次运行只执行一次流程，定时执行由cron等外部调度完成。`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	err := rootCmd.ExecuteContext(ctx)
	// 程序退出前同步日志
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局标志
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认为 ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "环境变量文件路径")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// .env 不存在时忽略
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "无法读取环境变量文件: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(viper.GetViper())
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "使用配置文件:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "无法读取配置文件: %v\n", err)
	}

	initLogger()
}

// initLogger 初始化日志系统
func initLogger() {
	logConfig := logger.Config{
		Level:      viper.GetString("logger.level"),
		Console:    viper.GetBool("logger.console"),
		FilePath:   viper.GetString("logger.file_path"),
		MaxSize:    viper.GetInt("logger.max_size"),
		MaxBackups: viper.GetInt("logger.max_backups"),
		MaxAge:     viper.GetInt("logger.max_age"),
		Compress:   viper.GetBool("logger.compress"),
	}

	if err := logger.Init(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志系统失败: %v\n", err)
	}
}

// bindEnv 绑定环境变量，保留无前缀的常用变量名
func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"feeds.urls":         "FEED_URLS",
		"feeds.opml_file":    "FEEDS_OPML_FILE",
		"instructions":       "INSTRUCTIONS",
		"completion.api_key": "OPENAI_API_KEY",
		"completion.model":   "OPENAI_MODEL",
		"completion.api_url": "OPENAI_API_URL",
		"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":   "TELEGRAM_CHAT_ID",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// setupSignalHandler 收到中断信号时取消上下文，再次收到时直接退出
func setupSignalHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 2)
	// 监听 SIGINT (Ctrl+C) 和 SIGTERM 信号
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintln(os.Stderr, "\n接收到中断信号，正在优雅退出...")
		logger.Info("程序接收到中断信号，正在取消当前流程")
		cancel()

		<-c
		_ = logger.Sync()
		os.Exit(1)
	}()
}
