package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 业务指标
type AppMetrics struct {
	CommandsSent    *prometheus.CounterVec // labels: device
	CommandErrors   *prometheus.CounterVec // labels: kind=command|timeout|disconnected
	FramesDecoded   prometheus.Counter
	FrameErrors     *prometheus.CounterVec // labels: kind=framing|checksum
	UnmatchedFrames prometheus.Counter     // 无在飞请求对应的响应/通知
	BytesWritten    prometheus.Counter
	BytesReceived   prometheus.Counter
	PendingGauge    prometheus.Gauge // 当前在飞请求数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_commands_sent_total",
			Help: "Commands written to the transport, by target device.",
		}, []string{"device"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_command_errors_total",
			Help: "Failed commands by error kind.",
		}, []string{"kind"}),
		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_frames_decoded_total",
			Help: "Complete frames decoded from the inbound stream.",
		}),
		FrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_frame_errors_total",
			Help: "Frames dropped by the assembler, by error kind.",
		}, []string{"kind"}),
		UnmatchedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_unmatched_frames_total",
			Help: "Inbound frames with no matching pending request.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_bytes_written_total",
			Help: "Raw bytes written to the transport.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_bytes_received_total",
			Help: "Raw bytes received from the transport.",
		}),
		PendingGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "link_pending_requests",
			Help: "Commands currently awaiting a response.",
		}),
	}
	reg.MustRegister(
		m.CommandsSent, m.CommandErrors, m.FramesDecoded, m.FrameErrors,
		m.UnmatchedFrames, m.BytesWritten, m.BytesReceived, m.PendingGauge,
	)
	return m
}
