package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/philfry41/grok-playground/internal/config"
	"github.com/philfry41/grok-playground/internal/engine"
	"github.com/philfry41/grok-playground/internal/services"
	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/prompts"
)

const (
	AgentName       = "Grok"
	PlaceHolderText = "Type your message here..."

	// edgeLogTailBytes is how much of the trigger log /edgelog shows.
	edgeLogTailBytes = 1000

	audioDir = "audio"
)

type ttsMode int

const (
	ttsOff ttsMode = iota
	ttsPlay
	ttsSave
)

func (m ttsMode) String() string {
	switch m {
	case ttsPlay:
		return "auto-play"
	case ttsSave:
		return "auto-save"
	default:
		return "off"
	}
}

type entryKind int

const (
	entryUser entryKind = iota
	entryAgent
	entryNotice
	entryError
)

type displayEntry struct {
	kind entryKind
	text string
}

// ChatUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ChatUI struct {
	eng  *engine.Engine
	sess *engine.Session
	tts  *services.ElevenLabsService
	cfg  *config.Config

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	entries      []displayEntry
	ready        bool
	width        int
	height       int
	loading      bool
	progressTick int

	ttsOutput ttsMode
	triggers  int

	showQuitModal bool
}

type turnMsg struct {
	result *engine.TurnResult
	err    error
}

type noticeMsg string

type openerMsg struct {
	text string
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

func NewChatUI(eng *engine.Engine, sess *engine.Session, tts *services.ElevenLabsService, cfg *config.Config) ChatUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 4000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ChatUI{
		eng:          eng,
		sess:         sess,
		tts:          tts,
		cfg:          cfg,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
	ui.restoreEntries()
	return ui
}

// restoreEntries rebuilds the display log from a resumed transcript.
func (m *ChatUI) restoreEntries() {
	for _, msg := range m.sess.History.Messages[m.sess.History.PrimingSize:] {
		switch msg.Role {
		case chat.ChatRoleUser:
			m.entries = append(m.entries, displayEntry{entryUser, msg.Content})
		case chat.ChatRoleAgent:
			m.entries = append(m.entries, displayEntry{entryAgent, msg.Content})
		}
	}
}

func (m ChatUI) Init() tea.Cmd {
	if openerFlag != "" {
		return tea.Batch(textarea.Blink, m.sendOpener(openerFlag))
	}
	return textarea.Blink
}

func (m ChatUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if last := m.sess.History.LastAgentMessage(); last != "" {
				if err := clipboard.WriteAll(last); err != nil {
					m.pushEntry(entryError, "Could not copy to clipboard: "+err.Error())
				} else {
					m.pushEntry(entryNotice, "Last response copied to clipboard")
				}
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if input == "exit" {
				return m, tea.Quit
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			return m.startTurn(input, m.sendTurn(input))
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.pushEntry(entryError, msg.err.Error())
			m.metaViewport.SetContent(m.writeMetadata())
			return m, nil
		}
		m.pushEntry(entryAgent, msg.result.Reply)
		if msg.result.Guarded {
			m.triggers++
			m.pushEntry(entryNotice, "Caught male climax during edging — rolled back and redirected")
		}
		if msg.result.StateErr != nil {
			m.pushEntry(entryNotice, "Scene state not updated this turn")
		}
		if msg.result.PersistErr != nil {
			m.pushEntry(entryNotice, "Session not saved: "+msg.result.PersistErr.Error())
		}
		m.metaViewport.SetContent(m.writeMetadata())
		return m, m.autoSpeak(msg.result.Reply)

	case noticeMsg:
		m.pushEntry(entryNotice, string(msg))
		return m, nil

	case openerMsg:
		return m.startTurn(msg.text, m.sendTurn(msg.text))

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// startTurn records the user entry, flips the loading state, and kicks
// off the async work plus the progress animation.
func (m ChatUI) startTurn(input string, work tea.Cmd) (tea.Model, tea.Cmd) {
	m.textarea.Reset()
	m.loading = true
	m.progressTick = 0
	m.entries = append(m.entries, displayEntry{entryUser, input})
	m.writeChatContent()
	return m, tea.Batch(work, progressTick())
}

func (m *ChatUI) pushEntry(kind entryKind, text string) {
	m.entries = append(m.entries, displayEntry{kind, text})
	m.writeChatContent()
}

func (m ChatUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.textarea.Reset()
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/help":
		m.pushEntry(entryNotice, helpText)

	case "/new":
		if err := m.eng.NewScene(context.Background(), m.sess); err != nil {
			m.pushEntry(entryError, "Could not persist reset: "+err.Error())
		}
		m.entries = nil
		m.pushEntry(entryNotice, "New scene. Priming kept.")
		m.metaViewport.SetContent(m.writeMetadata())

	case "/raw":
		m.eng.RawReassert(m.sess)
		m.pushEntry(entryNotice, "Raw tone reasserted")

	case "/edge":
		m.eng.SetMode(m.sess, prompts.ModeEdge)
		m.pushEntry(entryNotice, "Edging: her climax allowed; his is NOT")
		m.metaViewport.SetContent(m.writeMetadata())

	case "/payoff":
		m.eng.SetMode(m.sess, prompts.ModePayoff)
		m.pushEntry(entryNotice, "Payoff: climax allowed for both")
		m.metaViewport.SetContent(m.writeMetadata())

	case "/hold":
		m.eng.SetMode(m.sess, prompts.ModeHold)
		m.pushEntry(entryNotice, "Hold: no climax for anyone")
		m.metaViewport.SetContent(m.writeMetadata())

	case "/cont":
		target := engine.DefaultWordTarget
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				target = n
			}
		}
		return m.startTurn(fmt.Sprintf("(continue, ~%d words)", target), m.sendContinue(target))

	case "/loadopener":
		filename := "opener.txt"
		if len(fields) > 1 {
			filename = fields[1]
		}
		return m, m.sendOpener(filename)

	case "/tts":
		if m.tts == nil {
			m.pushEntry(entryNotice, "TTS disabled - set ELEVENLABS_API_KEY to enable")
			break
		}
		m.ttsOutput = (m.ttsOutput + 1) % 3
		m.pushEntry(entryNotice, "TTS mode: "+m.ttsOutput.String())
		m.metaViewport.SetContent(m.writeMetadata())

	case "/voice":
		if m.tts == nil {
			m.pushEntry(entryNotice, "TTS disabled - set ELEVENLABS_API_KEY to enable")
			break
		}
		if len(fields) > 1 {
			m.tts.SetVoice(fields[1])
			m.pushEntry(entryNotice, "Voice changed to: "+fields[1])
		} else {
			return m, m.listVoices()
		}

	case "/save":
		if m.tts == nil {
			m.pushEntry(entryNotice, "TTS disabled - set ELEVENLABS_API_KEY to enable")
			break
		}
		last := m.sess.History.LastAgentMessage()
		if last == "" {
			m.pushEntry(entryNotice, "No response to save")
			break
		}
		return m, m.saveSpeech(last)

	case "/edgelog":
		content, err := readEdgeLog(m.cfg.EdgeLogFile, edgeLogTailBytes)
		if err != nil {
			m.pushEntry(entryError, "Could not read edge log: "+err.Error())
		} else if content == "" {
			m.pushEntry(entryNotice, "No edge triggers logged yet")
		} else {
			m.pushEntry(entryNotice, "Recent edge triggers:\n"+content)
		}

	default:
		m.pushEntry(entryNotice, "Unknown command. /help lists commands.")
	}

	return m, nil
}

func (m ChatUI) sendTurn(input string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.eng.ProcessTurn(context.Background(), m.sess, input)
		return turnMsg{result, err}
	}
}

func (m ChatUI) sendContinue(target int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.eng.Continue(context.Background(), m.sess, target)
		return turnMsg{result, err}
	}
}

// sendOpener reads the opener file off-model; the resulting openerMsg
// starts the first turn once it reaches Update.
func (m ChatUI) sendOpener(filename string) tea.Cmd {
	return func() tea.Msg {
		opener, err := os.ReadFile(filename)
		if err != nil {
			return noticeMsg("Couldn't read " + filename + ": " + err.Error())
		}
		text := strings.TrimSpace(string(opener))
		if text == "" {
			return noticeMsg(filename + " looks empty")
		}
		return openerMsg{text}
	}
}

func (m ChatUI) listVoices() tea.Cmd {
	return func() tea.Msg {
		voices, err := m.tts.Voices(context.Background())
		if err != nil {
			return noticeMsg("Could not fetch voices: " + err.Error())
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Available voices (%d total):\n", len(voices)))
		for _, v := range voices {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", v.VoiceID, v.Name))
		}
		return noticeMsg(sb.String())
	}
}

func (m ChatUI) saveSpeech(text string) tea.Cmd {
	return func() tea.Msg {
		path, err := m.tts.SaveSpeech(context.Background(), text, audioDir)
		if err != nil {
			return noticeMsg("TTS error: " + err.Error())
		}
		return noticeMsg("Audio saved to: " + path)
	}
}

// autoSpeak handles the configured TTS output mode for a fresh reply.
func (m ChatUI) autoSpeak(reply string) tea.Cmd {
	if m.tts == nil || m.ttsOutput == ttsOff || strings.TrimSpace(reply) == "" {
		return nil
	}
	if m.ttsOutput == ttsSave {
		return m.saveSpeech(reply)
	}
	return func() tea.Msg {
		audio, err := m.tts.Synthesize(context.Background(), reply)
		if err != nil {
			return noticeMsg("TTS error: " + err.Error())
		}
		f, err := os.CreateTemp("", "grok-tts-*.mp3")
		if err != nil {
			return noticeMsg("TTS error: " + err.Error())
		}
		path := f.Name()
		_, werr := f.Write(audio)
		_ = f.Close()
		defer func() { _ = os.Remove(path) }()
		if werr != nil {
			return noticeMsg("TTS error: " + werr.Error())
		}
		if err := playAudio(path); err != nil {
			return noticeMsg(err.Error())
		}
		return nil
	}
}

// playAudio shells out to the first available system player.
func playAudio(path string) error {
	for _, player := range []string{"afplay", "mpg123", "mpv", "vlc"} {
		bin, err := exec.LookPath(player)
		if err != nil {
			continue
		}
		cmd := exec.Command(bin, path)
		cmd.Stdout = nil
		cmd.Stderr = nil
		return cmd.Run()
	}
	return fmt.Errorf("no audio player found (install mpg123, mpv, or vlc)")
}

func readEdgeLog(path string, tailBytes int) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	content := strings.TrimSpace(string(data))
	if len(content) > tailBytes {
		content = content[len(content)-tailBytes:]
	}
	return content, nil
}

const helpText = `
Commands:
• /new - Start a new scene (priming kept)
• /raw - Reassert the lexical contract
• /edge | /payoff | /hold - Switch climax mode
• /cont [words] - Continue the scene (~500 words default)
• /loadopener [file] - Open the scene from a file
• /tts - Cycle TTS mode (off / auto-play / auto-save)
• /voice [id] - List voices or switch voice
• /save - Save the last response as audio
• /edgelog - Show recent edge triggers
• Ctrl+Y - Copy last response
• exit or Ctrl+C - Quit
`

func (m *ChatUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("GROK PLAYGROUND") + "\n\n")
	content.WriteString("Type below to drive the scene. /help lists commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, e := range m.entries {
		switch e.kind {
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-6) + "\n\n")
		case entryAgent:
			prefix := agentStyle.Render(AgentName + ": ")
			content.WriteString(prefix + wordwrap.String(e.text, chatWidth-len(AgentName)-2) + "\n\n")
		case entryNotice:
			content.WriteString(noticeStyle.Render(wordwrap.String(e.text, chatWidth-6)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+wordwrap.String(e.text, chatWidth-6)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ChatUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(m.sess.ID.String()[:8] + "...\n\n")

	content.WriteString("Model:\n")
	content.WriteString(m.cfg.XAIModel + "\n\n")

	content.WriteString("Mode:\n")
	content.WriteString(string(m.sess.Mode) + "\n\n")

	content.WriteString("Messages:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", len(m.sess.History.Messages)))

	content.WriteString("Edge triggers:\n")
	content.WriteString(fmt.Sprintf("%d this session\n\n", m.triggers))

	if m.tts != nil {
		content.WriteString("TTS:\n")
		content.WriteString(m.ttsOutput.String() + "\n\n")
	}

	state := m.eng.Tracker().State()
	content.WriteString("Location:\n")
	content.WriteString(state.Location + "\n\n")
	if len(state.Characters) > 0 {
		content.WriteString(fmt.Sprintf("Characters:\n%d tracked\n\n", len(state.Characters)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func (m ChatUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ChatUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the scene?"))
	content.WriteString("\n\n")
	content.WriteString("The session is saved and can be resumed with --session " + m.sess.ID.String()[:8] + "...")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(56).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ChatUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

func (m ChatUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
