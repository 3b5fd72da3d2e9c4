package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const maxUploadMemory = 32 << 20

// Received is one message accepted by an Inbox.
type Received struct {
	From     string
	Text     *TextMessage
	Media    *MediaManifest
	Files    []string // stored paths, in manifest order
	Received time.Time
}

// Inbox is a minimal chat peer. It accepts the requests a Client makes and
// keeps them in memory, storing uploaded files under dir when set.
type Inbox struct {
	mu       sync.Mutex
	messages []Received
	dir      string
	notify   chan Received
	memory   int64 // upload bytes held in memory before spilling to temp files
}

func NewInbox(dir string) *Inbox {
	return &Inbox{dir: dir, notify: make(chan Received, 16), memory: maxUploadMemory}
}

// Notifications delivers every accepted message. Messages are dropped when
// nobody keeps up with the channel.
func (in *Inbox) Notifications() <-chan Received {
	return in.notify
}

// Messages returns the accepted messages in arrival order.
func (in *Inbox) Messages() []Received {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Received(nil), in.messages...)
}

func (in *Inbox) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+textPath, in.handleText)
	mux.HandleFunc("POST "+mediaPath, in.handleMedia)
	return mux
}

func (in *Inbox) handleText(w http.ResponseWriter, r *http.Request) {
	var msg TextMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid text message", http.StatusBadRequest)
		return
	}
	in.record(Received{From: r.Header.Get(serviceIDHeader), Text: &msg})
	w.WriteHeader(http.StatusOK)
}

func (in *Inbox) handleMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(in.memory); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("Failed to remove upload temp files", "error", err)
		}
	}()
	var manifest MediaManifest
	if err := json.Unmarshal([]byte(r.FormValue(manifestField)), &manifest); err != nil {
		http.Error(w, "invalid manifest", http.StatusBadRequest)
		return
	}

	files := make([]string, 0, len(manifest.Items))
	for i, item := range manifest.Items {
		stored, err := in.store(r, i, manifest.ID, item)
		if err != nil {
			slog.Error("Failed to store upload", "name", item.Name, "error", err)
			http.Error(w, "missing or unreadable file part", http.StatusBadRequest)
			return
		}
		files = append(files, stored)
	}

	in.record(Received{From: r.Header.Get(serviceIDHeader), Media: &manifest, Files: files})
	w.WriteHeader(http.StatusOK)
}

// store reads one file part. Without a directory the part is only checked
// against the manifest size.
func (in *Inbox) store(r *http.Request, index int, uploadID string, item MediaItem) (string, error) {
	f, _, err := r.FormFile(filePrefix + strconv.Itoa(index))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var (
		dst  io.Writer = io.Discard
		path string
	)
	if in.dir != "" {
		dir := filepath.Join(in.dir, filepath.Base(uploadID))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		path = filepath.Join(dir, strconv.Itoa(index)+"-"+filepath.Base(item.Name))
		out, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer out.Close()
		dst = out
	}
	n, err := io.Copy(dst, f)
	if err != nil {
		return "", err
	}
	if n != item.Size {
		return "", fmt.Errorf("%s: got %d bytes, manifest says %d", item.Name, n, item.Size)
	}
	return path, nil
}

func (in *Inbox) record(msg Received) {
	msg.Received = time.Now()
	in.mu.Lock()
	in.messages = append(in.messages, msg)
	in.mu.Unlock()
	select {
	case in.notify <- msg:
	default:
	}
}
