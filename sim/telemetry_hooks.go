package sim

import "log/slog"

// flushTelemetry closes the stats window when it is due and fans the result
// out to the callback, the log and the CSV output.
func (s *Simulation) flushTelemetry(dt float64) {
	s.simTime += dt
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	sample := s.sample()
	sample.SimTime = s.simTime
	stats := s.collector.Flush(s.tick, sample)
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
