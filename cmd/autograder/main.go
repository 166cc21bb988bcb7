package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/autograder/internal/grader"
	"github.com/pavelanni/autograder/internal/handler"
	appI18n "github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/metrics"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autograder",
		Short: "Grade free-text answers against reference answers",
	}

	serve := serveCmd()
	root.AddCommand(serve, gradeCmd(), gradeDocumentCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `autograder --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", "127.0.0.1:5000", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default language for messages (en, ru)")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins (repeatable)")
	f.Int("max-upload-mb", 10, "Maximum size of an upload request in MiB")
	addAnswerLimitFlag(cmd)
	addLogFlags(cmd)
	return cmd
}

func addAnswerLimitFlag(cmd *cobra.Command) {
	cmd.Flags().Int("max-answer-chars", grader.DefaultMaxAnswerChars, "Maximum characters per reference or student answer (0 for no limit)")
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("AUTOGRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("autograder")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/autograder")
	v.AddConfigPath("/etc/autograder")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	tr, err := appI18n.New(lang)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	g := grader.New(slog.Default(), metrics.New(reg), grader.WithMaxAnswerChars(v.GetInt("max-answer-chars")))

	maxUpload := int64(v.GetInt("max-upload-mb")) << 20
	h, err := handler.New(g, tr, handler.Config{MaxUploadBytes: maxUpload})
	if err != nil {
		return err
	}

	origins := v.GetStringSlice("cors-origins")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders: []string{handler.RunIDHeader},
		MaxAge:         300,
	}))
	r.Use(tr.Middleware)
	h.Routes(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"cors_origins", origins,
		"max_upload_bytes", maxUpload,
		"max_answer_chars", g.MaxAnswerChars(),
	)
	return http.ListenAndServe(addr, r)
}
