package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"minute/ffmpeg"
	"minute/gemini"
	"minute/llm"
	"minute/pcm"
	"minute/pipeline"
	"minute/transcript"
	"minute/watch"
	"minute/whisper"
)

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(summarizeCmd)

	rootCmd.PersistentFlags().String("gemini-api-key", "", "Gemini API key")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().
		String("backend", "live", "Transcription backend (live or batch)")
	rootCmd.PersistentFlags().
		String("summarizer", "openai", "Summarizer backend (openai, gemini, or none)")
	rootCmd.PersistentFlags().
		Int("target-rate", 16000, "Sample rate the streaming backend expects")
	rootCmd.PersistentFlags().
		Int("chunk-size", pcm.DefaultChunkSize, "Samples per streaming packet")
	rootCmd.PersistentFlags().
		Duration("pace-interval", 200*time.Millisecond, "Delay between streamed packets")
	rootCmd.PersistentFlags().
		Duration("fallback-delay", 5*time.Second, "How long to wait for the completion signal after the last packet")
	rootCmd.PersistentFlags().
		String("live-model", gemini.DefaultModel, "Streaming transcription model")
	rootCmd.PersistentFlags().
		String("batch-model", whisper.DefaultModel, "Single-shot transcription model")
	rootCmd.PersistentFlags().
		String("summary-model", "", "Summarization model (empty for the backend default)")
	rootCmd.PersistentFlags().
		String("accumulation", "append", "Partial transcript accumulation (append or replace)")

	viper.BindPFlag("gemini_api_key", rootCmd.PersistentFlags().Lookup("gemini-api-key"))
	viper.BindPFlag("openai_api_key", rootCmd.PersistentFlags().Lookup("openai-api-key"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("summarizer", rootCmd.PersistentFlags().Lookup("summarizer"))
	viper.BindPFlag("target_rate", rootCmd.PersistentFlags().Lookup("target-rate"))
	viper.BindPFlag("chunk_size", rootCmd.PersistentFlags().Lookup("chunk-size"))
	viper.BindPFlag("pace_interval", rootCmd.PersistentFlags().Lookup("pace-interval"))
	viper.BindPFlag("fallback_delay", rootCmd.PersistentFlags().Lookup("fallback-delay"))
	viper.BindPFlag("live_model", rootCmd.PersistentFlags().Lookup("live-model"))
	viper.BindPFlag("batch_model", rootCmd.PersistentFlags().Lookup("batch-model"))
	viper.BindPFlag("summary_model", rootCmd.PersistentFlags().Lookup("summary-model"))
	viper.BindPFlag("accumulation", rootCmd.PersistentFlags().Lookup("accumulation"))

	transcribeCmd.Flags().Bool("save", false, "Write transcript and summary files next to the input")
	watchCmd.Flags().Int("max-concurrent", 2, "Files processed at once")
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	logger = log.New(os.Stderr)
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}
}

var rootCmd = &cobra.Command{
	Use:   "minute",
	Short: "Turn a video or audio file into a transcript and a summary",
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe and summarize one media file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and process media files as they appear",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show the audio properties of a media file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <transcript.txt>",
	Short: "Summarize an existing transcript file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildPipeline(callbacks pipeline.Callbacks) *pipeline.Pipeline {
	cfg := pipeline.Config{
		Backend:    pipeline.Backend(viper.GetString("backend")),
		TargetRate: viper.GetInt("target_rate"),
	}

	live := &pipeline.GeminiLive{
		APIKey:        viper.GetString("gemini_api_key"),
		Model:         viper.GetString("live_model"),
		ChunkSize:     viper.GetInt("chunk_size"),
		PaceInterval:  viper.GetDuration("pace_interval"),
		FallbackDelay: viper.GetDuration("fallback_delay"),
		Policy:        accumulationPolicy(),
		Callbacks:     callbacks,
		Logger:        logger,
	}
	batch := pipeline.NewWhisperBatch(
		viper.GetString("openai_api_key"),
		viper.GetString("batch_model"),
		"",
		callbacks,
		logger,
	)

	return pipeline.New(
		cfg,
		ffmpeg.NewDecoder(),
		live,
		batch,
		buildSummarizer(),
		callbacks,
		logger,
	)
}

func buildSummarizer() llm.Summarizer {
	switch viper.GetString("summarizer") {
	case "gemini":
		keys := viper.GetStringSlice("gemini_api_keys")
		if len(keys) == 0 {
			if key := viper.GetString("gemini_api_key"); key != "" {
				keys = []string{key}
			}
		}
		return llm.NewGeminiSummarizer(keys, viper.GetString("summary_model"), logger)
	case "none":
		return nil
	default:
		return llm.NewOpenAISummarizer(
			viper.GetString("openai_api_key"),
			viper.GetString("summary_model"),
			"",
		)
	}
}

func accumulationPolicy() transcript.Policy {
	if viper.GetString("accumulation") == "replace" {
		return transcript.Replace
	}
	return transcript.Append
}

func defaultCallbacks() pipeline.Callbacks {
	var lastReported int
	display := transcript.NewDisplay()
	return pipeline.Callbacks{
		OnDuration: func(d time.Duration) {
			logger.Info("audio track", "duration", d.Round(time.Second))
		},
		OnProgress: func(percent float64) {
			// Log at 10% steps; a progress bar belongs to a UI layer, not here.
			step := int(percent) / 10
			if step > lastReported {
				lastReported = step
				logger.Info("uploading audio", "percent", int(percent))
			}
		},
		OnTranscript: func(text string, final bool) {
			fmt.Fprintln(os.Stderr, display.Update(text, final))
			if final {
				logger.Info("turn complete", "chars", len(text))
			}
		},
	}
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := signalContext()

	p := buildPipeline(defaultCallbacks())
	result, err := p.Process(ctx, path)
	if err != nil {
		return err
	}

	fmt.Println(result.Transcript)
	if result.Summary != "" {
		fmt.Println()
		fmt.Println(result.Summary)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		if err := os.WriteFile(base+".txt", []byte(result.Transcript+"\n"), 0644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		if result.Summary != "" {
			if err := os.WriteFile(base+".summary.md", []byte(result.Summary+"\n"), 0644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
		logger.Info("saved output", "transcript", base+".txt")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx := signalContext()
	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")

	handler := func(ctx context.Context, path string) error {
		p := buildPipeline(defaultCallbacks())
		result, err := p.Process(ctx, path)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(path, filepath.Ext(path))
		if err := os.WriteFile(base+".txt", []byte(result.Transcript+"\n"), 0644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		if result.Summary != "" {
			if err := os.WriteFile(base+".summary.md", []byte(result.Summary+"\n"), 0644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
		return nil
	}

	w, err := watch.New(dir, handler, logger, maxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := signalContext()

	decoder := ffmpeg.NewDecoder()
	buf, err := decoder.Decode(ctx, path)
	if err != nil {
		return err
	}

	targetRate := viper.GetInt("target_rate")
	chunkSize := viper.GetInt("chunk_size")
	resampled := pcm.Resample(buf, targetRate).Mono()
	chunker := pcm.NewChunker(resampled.Channels[0], targetRate, chunkSize)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"File", filepath.Base(path)})
	table.Append([]string{"Duration", buf.Duration().Round(time.Millisecond).String()})
	table.Append([]string{"Sample rate", strconv.Itoa(buf.Rate)})
	table.Append([]string{"Channels", strconv.Itoa(buf.NumChannels())})
	table.Append([]string{"Samples", strconv.Itoa(buf.Len())})
	table.Append([]string{"Streaming rate", strconv.Itoa(targetRate)})
	table.Append([]string{"Streaming chunks", strconv.Itoa(chunker.NumChunks())})
	table.Render()
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := signalContext()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	summarizer := buildSummarizer()
	if summarizer == nil {
		return fmt.Errorf("no summarizer configured")
	}
	summary, err := summarizer.Summarize(ctx, string(data))
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	fmt.Println(summary)
	return nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx
}
