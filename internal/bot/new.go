package bot

import (
	"net/http"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/output"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
)

// maxMessageLen is Discord's limit for one message body.
const maxMessageLen = 2000

// maxDownloadSize caps /process_audio attachments.
const maxDownloadSize = 100 << 20

type implHandler struct {
	recorder  recorder.Recorder
	audio     audio.Processor
	formatter *output.Formatter
	client    *http.Client
	logger    logger.Logger
}

// NewHandler creates the command handler. client downloads attachments;
// nil means http.DefaultClient.
func NewHandler(rec recorder.Recorder, proc audio.Processor, formatter *output.Formatter, client *http.Client, log logger.Logger) Handler {
	if client == nil {
		client = http.DefaultClient
	}
	if formatter == nil {
		formatter = output.NewFormatter()
	}
	return &implHandler{
		recorder:  rec,
		audio:     proc,
		formatter: formatter,
		client:    client,
		logger:    log,
	}
}
