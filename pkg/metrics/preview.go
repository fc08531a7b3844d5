package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PreviewMetrics tracks live preview session activity.
type PreviewMetrics struct {
	active   prometheus.Gauge
	started  prometheus.Counter
	expired  prometheus.Counter
	advances *prometheus.CounterVec
}

// NewPreviewMetrics registers preview session metrics on the provided registerer.
func NewPreviewMetrics(reg prometheus.Registerer) *PreviewMetrics {
	if reg == nil {
		return &PreviewMetrics{}
	}
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "preview_sessions_active",
		Help: "Currently open preview sessions.",
	})
	started := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preview_sessions_started_total",
		Help: "Preview sessions opened since process start.",
	})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preview_sessions_expired_total",
		Help: "Preview sessions reaped by the idle janitor.",
	})
	advances := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "preview_advances_total",
		Help: "Item advances by trigger (manual, timer, media_ended).",
	}, []string{"trigger"})
	reg.MustRegister(active, started, expired, advances)
	return &PreviewMetrics{
		active:   active,
		started:  started,
		expired:  expired,
		advances: advances,
	}
}

// SessionOpened increments the active gauge and start counter.
func (p *PreviewMetrics) SessionOpened() {
	if p == nil {
		return
	}
	if p.active != nil {
		p.active.Inc()
	}
	if p.started != nil {
		p.started.Inc()
	}
}

// SessionClosed decrements the active gauge.
func (p *PreviewMetrics) SessionClosed() {
	if p == nil || p.active == nil {
		return
	}
	p.active.Dec()
}

// SessionExpired records a janitor reap and decrements the active gauge.
func (p *PreviewMetrics) SessionExpired() {
	if p == nil {
		return
	}
	if p.expired != nil {
		p.expired.Inc()
	}
	if p.active != nil {
		p.active.Dec()
	}
}

// IncAdvance counts one item advance for the given trigger.
func (p *PreviewMetrics) IncAdvance(trigger string) {
	if p == nil || p.advances == nil {
		return
	}
	p.advances.WithLabelValues(normalizeLabel(trigger)).Inc()
}
