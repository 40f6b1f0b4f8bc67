package receiver

import "fmt"

// StatusString returns a one-line summary of the stream suitable for
// status displays and diagnostic dumps.
func (r *Receiver) StatusString() string {
	reasm := r.reasm.Statistics()
	return fmt.Sprintf(
		"STATE=%s RX=%d BYTES=%d BAD=%d PARSE_ERR=%d FRAMES=%d COMPLETE=%d PARTIAL=%d GAPS=%d DROP=%d",
		r.State(),
		r.stats.GetDatagramsReceived(),
		r.stats.GetBytesReceived(),
		r.stats.GetBadDatagrams(),
		r.stats.GetParseErrors(),
		reasm.GetFramesEmitted(),
		reasm.GetFramesCompleted(),
		reasm.GetFramesPartial(),
		reasm.GetSeqGaps(),
		reasm.GetChunksDropped(),
	)
}
