package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
)

const namespace = "loopcheck"

// maxLabelLength ограничивает длину значения label.
const maxLabelLength = 128

// PrometheusCollector собирает метрики в собственный registry.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry
	instance string

	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	stepTotal       *prometheus.CounterVec
	runSteps        *prometheus.GaugeVec
	runSuccess      prometheus.Gauge
	runDuration     prometheus.Gauge
	runTimestamp    prometheus.Gauge
}

// NewPrometheusCollector создаёт коллектор. Конфигурация не проверяется:
// в режиме monitor Pushgateway может быть не задан, тогда Push ничего не делает.
//
// Метрики:
//   - loopcheck_command_duration_seconds{command,status}
//   - loopcheck_command_total{command,status}
//   - loopcheck_step_duration_seconds{suite,step,status}
//   - loopcheck_step_total{suite,step,status}
//   - loopcheck_last_run_steps{status}
//   - loopcheck_last_run_success, loopcheck_last_run_duration_seconds,
//     loopcheck_last_run_timestamp_seconds
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для label instance, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	c := &PrometheusCollector{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		instance: instance,
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command execution in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"command", "status"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_total",
			Help:      "Total number of command executions",
		}, []string{"command", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of a single scenario step in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"suite", "step", "status"}),
		stepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_total",
			Help:      "Total number of scenario steps by result",
		}, []string{"suite", "step", "status"}),
		runSteps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_steps",
			Help:      "Number of steps in the last run by result",
		}, []string{"status"}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run had no failed steps, 0 otherwise",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run in seconds",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time when the last run finished",
		}),
	}

	collectors := []prometheus.Collector{
		c.commandDuration, c.commandTotal, c.stepDuration, c.stepTotal,
		c.runSteps, c.runSuccess, c.runDuration, c.runTimestamp,
	}
	for _, col := range collectors {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}
	return c, nil
}

// RecordCommandStart пишет отладочную запись: длительность считается в RecordCommandEnd.
func (c *PrometheusCollector) RecordCommandStart(command string) {
	c.logger.Debug("metrics: команда начата", "command", command)
}

// RecordCommandEnd обновляет histogram и counter команды.
func (c *PrometheusCollector) RecordCommandEnd(command string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	command = sanitizeLabel(command)
	c.commandDuration.WithLabelValues(command, status).Observe(duration.Seconds())
	c.commandTotal.WithLabelValues(command, status).Inc()
}

// RecordStep обновляет метрики шага.
func (c *PrometheusCollector) RecordStep(suite, step, status string, duration time.Duration) {
	suite, step, status = sanitizeLabel(suite), sanitizeLabel(step), sanitizeLabel(status)
	c.stepDuration.WithLabelValues(suite, step, status).Observe(duration.Seconds())
	c.stepTotal.WithLabelValues(suite, step, status).Inc()
}

// RecordRun обновляет gauges последнего прогона.
func (c *PrometheusCollector) RecordRun(stats RunStats) {
	c.runSteps.WithLabelValues("pass").Set(float64(stats.Passed))
	c.runSteps.WithLabelValues("fail").Set(float64(stats.Failed))
	c.runSteps.WithLabelValues("skip").Set(float64(stats.Skipped))
	if stats.Failed == 0 {
		c.runSuccess.Set(1)
	} else {
		c.runSuccess.Set(0)
	}
	c.runDuration.Set(stats.Duration.Seconds())
	finished := stats.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	c.runTimestamp.Set(float64(finished.Unix()))
}

// Push отправляет метрики в Pushgateway. Ошибки логируются, результат всегда nil.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: URL Pushgateway не задан, отправка пропущена")
		return nil
	}
	if ctx.Err() != nil {
		c.logger.Debug("metrics: отправка отменена")
		return nil
	}

	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	pushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// Handler отдаёт метрики собственного registry.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry возвращает registry коллектора.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// sanitizeLabel заменяет управляющие символы и обрезает значение по рунам.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)
	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}
