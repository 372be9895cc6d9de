package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"audioverse/internal/cli/scheme/colours"
	"audioverse/internal/config"
	"audioverse/internal/studio"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		colours.Error.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithError(err).Warn("Unknown log level, keeping default")
	}

	app, err := studio.NewApp(cfg)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Close()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! Happy listening! 🎧"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "audioverse",
		Short: "🎙️ Turn any topic into a podcast episode",
		Long: `
┌─────────────────────────────────────┐
│  🎙️ Welcome to AudioVerse!          │
│  Topic in, podcast out              │
└─────────────────────────────────────┘

AudioVerse writes a podcast script for any topic, voices it with a
text-to-speech engine and plays or saves the episode.
		`,
		Run: app.ShowWelcome,
	}

	scriptCmd := &cobra.Command{
		Use:   "script <topic>",
		Short: "✍️ Write a podcast script",
		Long:  "Generate a podcast script for a topic and print it",
		Args:  cobra.MinimumNArgs(1),
		Run:   app.GenerateScript,
	}

	speakCmd := &cobra.Command{
		Use:   "speak <topic>",
		Short: "🎧 Write and voice a podcast",
		Long:  "Generate a script, synthesize it and save both the script and the audio",
		Args:  cobra.MinimumNArgs(1),
		Run:   app.Speak,
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List voices",
		Long:  "List the voices of the configured speech engine",
		Run:   app.ListVoices,
	}

	playCmd := &cobra.Command{
		Use:   "play <file>",
		Short: "📻 Play a saved episode",
		Long:  "Play an mp3 or wav file with pause/resume controls",
		Args:  cobra.ExactArgs(1),
		Run:   app.PlayFile,
	}

	studioCmd := &cobra.Command{
		Use:   "studio",
		Short: "🎛️ Interactive studio",
		Long:  "Walk through topic, script, voice, audio and playback at a prompt",
		Run:   app.RunStudio,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show settings",
		Long:  "Show the effective configuration",
		Run:   app.ConfigureSettings,
	}

	// Add flags
	scriptCmd.Flags().BoolP("save", "s", false, "Save the script as markdown")
	scriptCmd.Flags().StringP("out", "o", "", "Directory to save into (implies --save)")
	speakCmd.Flags().StringP("voice", "v", "", "Voice id, name or number. See voices for options")
	speakCmd.Flags().StringP("key", "k", "", "Speech API key for this run")
	speakCmd.Flags().StringP("out", "o", "", "Directory to save into")
	speakCmd.Flags().BoolP("play", "p", false, "Play the episode once generated")

	rootCmd.AddCommand(scriptCmd, speakCmd, voicesCmd, playCmd, studioCmd, settingsCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		app.Close()
		os.Exit(1)
	}

	app.Close()
}

// Configuration management with Viper
func init() {
	if err := config.Init(); err != nil {
		logrus.WithError(err).Warn("Failed to read config file, using defaults")
	}
}
