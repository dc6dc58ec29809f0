package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vox.town/capture"
	"vox.town/config"
	"vox.town/studio"
	"vox.town/stt"
	"vox.town/tts"
	"vox.town/web"
)

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(studioCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(exportsCmd)

	rootCmd.PersistentFlags().
		String("backend-url", "", "Transcription backend base URL")
	rootCmd.PersistentFlags().
		String("stt-provider", "", "Transcription provider (backend or openai)")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().
		String("elevenlabs-api-key", "", "ElevenLabs API key")
	rootCmd.PersistentFlags().
		String("export-dir", "", "Directory exported files are saved into")

	viper.BindPFlag(
		config.KeyBackendURL,
		rootCmd.PersistentFlags().Lookup("backend-url"),
	)
	viper.BindPFlag(
		config.KeyProvider,
		rootCmd.PersistentFlags().Lookup("stt-provider"),
	)
	viper.BindPFlag(
		config.KeyOpenAIAPIKey,
		rootCmd.PersistentFlags().Lookup("openai-api-key"),
	)
	viper.BindPFlag(
		config.KeyElevenLabsKey,
		rootCmd.PersistentFlags().Lookup("elevenlabs-api-key"),
	)
	viper.BindPFlag(
		config.KeyExportDir,
		rootCmd.PersistentFlags().Lookup("export-dir"),
	)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to run the HTTP server on")
	viper.BindPFlag(config.KeyHTTPPort, serveCmd.Flags().Lookup("port"))

	transcribeCmd.Flags().
		StringP("format", "f", "", "Export format (text, srt, vtt, timestamped, pdf)")
}

func initConfig() {
	config.Init()
	logger = log.New(os.Stdout)
}

var rootCmd = &cobra.Command{
	Use:   "voxpad",
	Short: "Voxpad is a dictation and transcription studio",
	Long: `Voxpad records the microphone or takes audio files, sends them to a
transcription backend, and turns the result into text, captions, and PDFs.`,
}

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Open the interactive terminal studio",
	Run:   runStudio,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser studio",
	Run:   runServe,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe one audio or video file",
	Args:  cobra.ExactArgs(1),
	Run:   runTranscribe,
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List exported files in a table",
	Run:   runExports,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createLoggers() (mainLogger, hearLogger, talkLogger *log.Logger) {
	logger.SetLevel(log.DebugLevel)

	mainLogger = logger.With().WithPrefix("main")
	hearLogger = logger.With().WithPrefix("hear")
	talkLogger = logger.With().WithPrefix("talk")
	return
}

// buildStudio assembles the session controller from configuration: capture
// device, transcription provider, speaker, and export sink.
func buildStudio(onChange func()) (*studio.Studio, *log.Logger) {
	mainLogger, hearLogger, talkLogger := createLoggers()

	grab := viper.GetString(config.KeyCaptureGrab)
	input := viper.GetString(config.KeyCaptureInput)
	if grab == "" {
		grab, input = capture.DefaultGrab()
	} else if input == "" {
		input = "default"
	}
	device := capture.NewFFmpegDevice(grab, input, hearLogger)

	backend := stt.NewClient(viper.GetString(config.KeyBackendURL), hearLogger)
	if strings.HasPrefix(viper.GetString(config.KeyPublicURL), "https://") {
		backend.ServedOverTLS = true
	}

	var pipeline stt.Transcriber = backend
	if viper.GetString(config.KeyProvider) == config.ProviderOpenAI {
		apiKey := viper.GetString(config.KeyOpenAIAPIKey)
		if apiKey == "" {
			mainLogger.Fatal("missing OPENAI_API_KEY or --openai-api-key=")
		}
		pipeline = stt.NewWhisperTranscriber(apiKey)
	}

	var speaker tts.Speaker
	if apiKey := viper.GetString(config.KeyElevenLabsKey); apiKey != "" {
		speaker = tts.NewStreamSpeaker(tts.NewElevenLabsSpeechGenerator(
			apiKey,
			viper.GetString(config.KeyElevenLabsVoice),
			viper.GetString(config.KeyElevenLabsModel),
		))
	} else {
		speaker = tts.NewCommandSpeaker()
		talkLogger.Debug("no elevenlabs key, using local speech synthesis")
	}

	s := studio.New(studio.Options{
		Device:   device,
		Pipeline: pipeline,
		PDF:      backend,
		Speaker:  speaker,
		Sink:     studio.DirSink{Dir: viper.GetString(config.KeyExportDir)},
		Logger:   mainLogger,
		OnChange: onChange,
	})
	return s, mainLogger
}

func runStudio(cmd *cobra.Command, args []string) {
	updates := make(chan struct{}, 1)
	s, mainLogger := buildStudio(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	// The TUI owns the terminal; keep log output away from it.
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.ErrorLevel)

	if _, err := studio.NewProgram(s, updates).Run(); err != nil {
		mainLogger.Fatal("studio", "error", err.Error())
	}
}

func runServe(cmd *cobra.Command, args []string) {
	s, mainLogger := buildStudio(nil)
	handler := web.NewHandler(s, mainLogger)
	s.SetOnChange(handler.BroadcastState)

	port := viper.GetInt(config.KeyHTTPPort)
	mainLogger.Info("http", "url", fmt.Sprintf("http://localhost:%d", port))
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler.Router())
	if err != nil {
		mainLogger.Fatal("start HTTP server", "error", err.Error())
	}
}

func runTranscribe(cmd *cobra.Command, args []string) {
	s, mainLogger := buildStudio(nil)

	src, err := stt.SourceFromFile(args[0])
	if err != nil {
		mainLogger.Fatal("read file", "error", err.Error())
	}

	if err := s.Submit(cmd.Context(), src); err != nil {
		mainLogger.Fatal("transcribe", "error", err.Error())
	}

	fmt.Println(s.Text())

	format, _ := cmd.Flags().GetString("format")
	kind, err := pickExportKind(format)
	if err != nil {
		mainLogger.Fatal("export", "error", err.Error())
	}
	if kind == "" {
		return
	}

	path, err := s.Export(cmd.Context(), kind)
	if err != nil {
		mainLogger.Fatal("export", "error", err.Error())
	}
	mainLogger.Info("exported", "path", path)
}

func runExports(cmd *cobra.Command, args []string) {
	mainLogger, _, _ := createLoggers()
	dir := viper.GetString(config.KeyExportDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No exports yet.")
			return
		}
		mainLogger.Fatal("read export dir", "error", err.Error())
	}
	if len(entries) == 0 {
		fmt.Println("No exports yet.")
		return
	}

	table := newExportsTable(os.Stdout)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		table.Append([]string{
			entry.Name(),
			fmt.Sprintf("%d", info.Size()),
			info.ModTime().Format("2006-01-02 15:04:05"),
			filepath.Join(dir, entry.Name()),
		})
	}
	table.Render()
}
