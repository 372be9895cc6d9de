package studio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"audioverse/internal/cli/scheme/colours"
)

// Prompt drives a Session line by line. Every failure is printed and the
// prompt comes back.
type Prompt struct {
	session *Session
	in      *bufio.Scanner
	out     io.Writer
}

func NewPrompt(s *Session, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		session: s,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run reads commands until quit, end of input or ctx is done
func (p *Prompt) Run(ctx context.Context) error {
	p.help()

	for {
		if ctx.Err() != nil {
			return nil
		}

		colours.Prompt.Fprint(p.out, "\n🎙️  audioverse> ")
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return p.in.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(p.in.Text()), " ")
		arg = strings.TrimSpace(arg)

		if quit := p.handle(ctx, strings.ToLower(cmd), arg); quit {
			colours.Warning.Fprintln(p.out, "👋 Goodbye!")
			return nil
		}
	}
}

func (p *Prompt) handle(ctx context.Context, cmd, arg string) bool {
	switch cmd {
	case "":
	case "topic", "t":
		p.topic(ctx, arg)
	case "script":
		p.showScript()
	case "voices":
		p.voices()
	case "voice", "v":
		p.selectVoice(arg)
	case "key":
		p.session.SetCredential(arg)
		if arg == "" {
			colours.Warning.Fprintln(p.out, "🔑 API key cleared")
		} else {
			colours.Success.Fprintln(p.out, "🔑 API key set for this session")
		}
	case "generate", "g":
		p.generate(ctx)
	case "play":
		p.transport(p.session.Player().Play, "▶️  Playing")
	case "pause":
		p.transport(p.session.Player().Pause, "⏸️  Paused")
	case "toggle", "p":
		p.transport(p.session.Player().Toggle, "")
	case "seek":
		p.seek(arg)
	case "volume", "vol":
		p.volume(arg)
	case "status", "s":
		p.status()
	case "save":
		p.save(arg)
	case "help", "h", "?":
		p.help()
	case "quit", "q", "exit":
		return true
	default:
		colours.Error.Fprintf(p.out, "❌ Unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func (p *Prompt) topic(ctx context.Context, arg string) {
	colours.Info.Fprintln(p.out, "✍️  Generating script...")

	sc, err := p.session.SubmitTopic(ctx, arg)
	if err != nil {
		p.fail(err)
		return
	}

	colours.Success.Fprintln(p.out, "✅ Script ready!")
	p.printScript(sc.Title, sc.Content)
	colours.Info.Fprintln(p.out, "💡 Pick a voice next: 'voices' then 'voice <n>'")
}

func (p *Prompt) showScript() {
	sc, ok := p.session.Script()
	if !ok {
		p.fail(ErrNoScript)
		return
	}
	p.printScript(sc.Title, sc.Content)
}

func (p *Prompt) printScript(title, content string) {
	fmt.Fprintln(p.out)
	colours.Title.Fprintf(p.out, "📄 %s\n", title)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, content)
}

func (p *Prompt) voices() {
	current, hasCurrent := p.session.Voice()

	colours.Title.Fprintln(p.out, "🎤 Voices")
	for i, v := range p.session.Voices() {
		marker := " "
		if hasCurrent && v.ID == current.ID {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d. ", marker, i+1)
		colours.Voice.Fprintf(p.out, "%s", v.Name)
		colours.Info.Fprintf(p.out, " (%s)\n", v.ID)
	}
}

func (p *Prompt) selectVoice(arg string) {
	v, err := p.session.SelectVoice(arg)
	if err != nil {
		p.fail(err)
		return
	}
	fmt.Fprint(p.out, "🎤 Voice: ")
	colours.Voice.Fprintln(p.out, v.Name)
}

func (p *Prompt) generate(ctx context.Context) {
	colours.Info.Fprintln(p.out, "🎧 Generating audio...")

	res, err := p.session.GenerateAudio(ctx)
	if err != nil {
		p.fail(err)
		return
	}

	colours.Success.Fprintf(p.out, "✅ Audio ready (%d KB), type 'play' to listen\n", res.Size()/1024)
}

func (p *Prompt) transport(action func() error, done string) {
	if err := action(); err != nil {
		p.fail(err)
		return
	}
	if done != "" {
		colours.Success.Fprintln(p.out, done)
	}
	p.status()
}

func (p *Prompt) seek(arg string) {
	percent, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		p.fail(fmt.Errorf("seek takes a percentage between 0 and 100: %q", arg))
		return
	}
	p.transport(func() error { return p.session.Player().Seek(percent) }, "")
}

func (p *Prompt) volume(arg string) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		p.fail(fmt.Errorf("volume takes a number between 0 and 100: %q", arg))
		return
	}
	p.session.Player().SetVolume(v)
	p.status()
}

func (p *Prompt) status() {
	if t := p.session.Topic(); t != "" {
		fmt.Fprintf(p.out, "📌 Topic: %s\n", t)
	}
	if v, ok := p.session.Voice(); ok {
		fmt.Fprint(p.out, "🎤 Voice: ")
		colours.Voice.Fprintln(p.out, v.Name)
	}
	if p.session.HasCredential() {
		fmt.Fprintln(p.out, "🔑 API key: set")
	} else {
		colours.Warning.Fprintln(p.out, "🔑 API key: not set")
	}
	colours.Info.Fprintf(p.out, "🔊 %s\n", p.session.Player().Status())
}

func (p *Prompt) save(dir string) {
	path, err := p.session.SaveScript(dir)
	if err != nil {
		p.fail(err)
		return
	}
	colours.Success.Fprintf(p.out, "💾 Script saved to %s\n", path)

	if p.session.Player().Resource() == nil {
		return
	}
	path, err = p.session.SaveAudio(dir)
	if err != nil {
		p.fail(err)
		return
	}
	colours.Success.Fprintf(p.out, "💾 Audio saved to %s\n", path)
}

func (p *Prompt) fail(err error) {
	var audioErr *AudioError
	switch {
	case errors.As(err, &audioErr):
		colours.Error.Fprintf(p.out, "❌ Error generating audio: %s\n", audioErr.Message)
	case errors.Is(err, ErrMissingInformation):
		colours.Error.Fprintf(p.out, "❌ Error generating audio: %v\n", err)
	default:
		colours.Error.Fprintf(p.out, "❌ %v\n", err)
	}
}

func (p *Prompt) help() {
	colours.Title.Fprintln(p.out, "🎙️  Podcast studio")
	fmt.Fprintln(p.out, "  topic <text>      - generate a script")
	fmt.Fprintln(p.out, "  script            - show the current script")
	fmt.Fprintln(p.out, "  voices            - list voices")
	fmt.Fprintln(p.out, "  voice <id|name|n> - select a voice")
	fmt.Fprintln(p.out, "  key <secret>      - set the speech API key for this session")
	fmt.Fprintln(p.out, "  generate          - synthesize audio for the script")
	fmt.Fprintln(p.out, "  play | pause      - transport (p toggles)")
	fmt.Fprintln(p.out, "  seek <0-100>      - jump to a percentage")
	fmt.Fprintln(p.out, "  volume <0-100>    - set volume, 0 mutes")
	fmt.Fprintln(p.out, "  status            - show playback status")
	fmt.Fprintln(p.out, "  save [dir]        - download script and audio")
	fmt.Fprintln(p.out, "  quit              - leave the studio")
}
