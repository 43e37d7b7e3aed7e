// Package metrics provides Prometheus metric collection for Huawei modems.
package metrics

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/huawei3g/modem-exporter/modem"
)

// Collector implements prometheus.Collector for modem metrics.
type Collector struct {
	client modem.Modem
	mu     sync.Mutex

	// Connection metrics
	signalDesc      *prometheus.Desc
	connectedDesc   *prometheus.Desc
	statusCodeDesc  *prometheus.Desc
	networkTypeDesc *prometheus.Desc

	// SMS metrics
	smsCountDesc  *prometheus.Desc
	smsUnreadDesc *prometheus.Desc

	// Scrape metrics
	scrapeSuccessDesc  *prometheus.Desc
	scrapeDurationDesc *prometheus.Desc
}

// NewCollector creates a new Collector with the given modem client.
func NewCollector(client modem.Modem) *Collector {
	labels := []string{"model", "interface"}

	return &Collector{
		client: client,

		signalDesc: prometheus.NewDesc(
			"huawei_modem_signal_percent",
			"Signal strength derived from the signal icon level (0-100)",
			labels,
			nil,
		),
		connectedDesc: prometheus.NewDesc(
			"huawei_modem_connected",
			"Whether the modem reports an established connection",
			labels,
			nil,
		),
		statusCodeDesc: prometheus.NewDesc(
			"huawei_modem_connection_status_code",
			"Raw connection status code reported by the modem",
			labels,
			nil,
		),
		networkTypeDesc: prometheus.NewDesc(
			"huawei_modem_network_type_info",
			"Current radio access technology",
			append(labels, "network_type"),
			nil,
		),

		smsCountDesc: prometheus.NewDesc(
			"huawei_modem_sms_messages",
			"Number of messages in the inbox",
			labels,
			nil,
		),
		smsUnreadDesc: prometheus.NewDesc(
			"huawei_modem_sms_unread_messages",
			"Number of unread messages in the inbox",
			labels,
			nil,
		),

		scrapeSuccessDesc: prometheus.NewDesc(
			"huawei_modem_scrape_success",
			"Whether the last scrape was successful",
			nil,
			nil,
		),
		scrapeDurationDesc: prometheus.NewDesc(
			"huawei_modem_scrape_duration_seconds",
			"Duration of the last scrape in seconds",
			nil,
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.signalDesc
	ch <- c.connectedDesc
	ch <- c.statusCodeDesc
	ch <- c.networkTypeDesc
	ch <- c.smsCountDesc
	ch <- c.smsUnreadDesc
	ch <- c.scrapeSuccessDesc
	ch <- c.scrapeDurationDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		ch <- prometheus.MustNewConstMetric(c.scrapeDurationDesc, prometheus.GaugeValue, v)
	}))
	defer timer.ObserveDuration()

	status, err := c.client.GetStatus()
	if err != nil {
		slog.Error("failed to collect modem status", "interface", c.client.Interface(), "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccessDesc, prometheus.GaugeValue, 0)
		return
	}

	count, err := c.client.GetMessageCount()
	if err != nil {
		slog.Error("failed to collect message count", "interface", c.client.Interface(), "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccessDesc, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeSuccessDesc, prometheus.GaugeValue, 1)

	model := string(c.client.GetModel())
	iface := c.client.Interface()

	connected := 0.0
	if status.Status == "Connected" {
		connected = 1.0
	}

	ch <- prometheus.MustNewConstMetric(c.signalDesc, prometheus.GaugeValue, float64(status.Signal), model, iface)
	ch <- prometheus.MustNewConstMetric(c.connectedDesc, prometheus.GaugeValue, connected, model, iface)
	ch <- prometheus.MustNewConstMetric(c.statusCodeDesc, prometheus.GaugeValue, float64(status.ConnectionCode), model, iface)
	ch <- prometheus.MustNewConstMetric(c.networkTypeDesc, prometheus.GaugeValue, 1, model, iface, status.NetworkType)

	ch <- prometheus.MustNewConstMetric(c.smsCountDesc, prometheus.GaugeValue, float64(count.Count), model, iface)
	ch <- prometheus.MustNewConstMetric(c.smsUnreadDesc, prometheus.GaugeValue, float64(count.Unread), model, iface)
}

// Close releases resources held by the collector.
func (c *Collector) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
