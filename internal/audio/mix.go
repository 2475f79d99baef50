package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// Mix writes every stream to a temp file and runs them through ffmpeg's amix
// filter. Inputs are ordered by participant id so the same streams always
// produce the same command line.
func (p *implProcessor) Mix(ctx context.Context, streams map[string][]byte, format Format) ([]byte, error) {
	ids := make([]string, 0, len(streams))
	for id, data := range streams {
		if len(data) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	switch len(ids) {
	case 0:
		return nil, &ProcessingError{Op: "mix", Err: ErrNoAudio}
	case 1:
		p.logger.Debug(ctx, "Single participant, converting instead of mixing: %s", ids[0])
		return p.Convert(ctx, streams[ids[0]], format)
	}

	workDir, err := p.makeWorkDir("mix-*")
	if err != nil {
		return nil, &ProcessingError{Op: "mix", Err: err}
	}
	defer p.cleanupWorkDir(ctx, workDir)

	var args []string
	args = append(args, baseArgs...)
	for i, id := range ids {
		name := "input_" + strconv.Itoa(i)
		if err := writeTemp(filepath.Join(workDir, name), streams[id]); err != nil {
			return nil, &ProcessingError{Op: "mix", Err: err}
		}
		args = append(args, "-i", name)
	}

	// amix: mix all inputs, keep the longest, no volume ramp when a speaker drops out
	filter := fmt.Sprintf("amix=inputs=%d:duration=longest:dropout_transition=0", len(ids))
	args = append(args, "-filter_complex", filter)
	args = append(args, outputArgs(format)...)

	p.logger.Info(ctx, "Mixing %d participant streams into %s", len(ids), format)

	out, err := p.run(ctx, workDir, args)
	if err != nil {
		return nil, &ProcessingError{Op: "mix", Err: err}
	}

	p.logger.Info(ctx, "Mixed audio ready (%d bytes)", len(out))
	return out, nil
}
