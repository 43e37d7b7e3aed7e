package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/huawei3g/modem-exporter/modem"
)

type stubModem struct {
	status    *modem.Status
	count     *modem.MessageCount
	statusErr error
	closed    bool
}

func (s *stubModem) GetStatus() (*modem.Status, error) { return s.status, s.statusErr }
func (s *stubModem) GetMessageCount() (*modem.MessageCount, error) {
	return s.count, nil
}
func (s *stubModem) GetMessages(bool) ([]modem.SMSMessage, error) { return nil, nil }
func (s *stubModem) DeleteMessage(string) error                   { return nil }
func (s *stubModem) DeleteMessages([]string) error                { return nil }
func (s *stubModem) Interface() string                            { return "wwan0" }
func (s *stubModem) GetModel() modem.Model                        { return modem.ModelHuaweiE303 }
func (s *stubModem) Close() error {
	s.closed = true
	return nil
}

func gather(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	byName := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func gaugeValue(t *testing.T, families map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	f, ok := families[name]
	if !ok || len(f.GetMetric()) != 1 {
		t.Fatalf("metric %s missing", name)
	}
	return f.GetMetric()[0].GetGauge().GetValue()
}

func TestCollect(t *testing.T) {
	client := &stubModem{
		status: &modem.Status{Status: "Connected", Signal: 40, NetworkType: "GPRS", ConnectionCode: 901},
		count:  &modem.MessageCount{Count: 2, Unread: 1},
	}
	families := gather(t, NewCollector(client))

	want := map[string]float64{
		"huawei_modem_scrape_success":         1,
		"huawei_modem_signal_percent":         40,
		"huawei_modem_connected":              1,
		"huawei_modem_connection_status_code": 901,
		"huawei_modem_network_type_info":      1,
		"huawei_modem_sms_messages":           2,
		"huawei_modem_sms_unread_messages":    1,
	}
	for name, value := range want {
		if got := gaugeValue(t, families, name); got != value {
			t.Errorf("%s = %v, want %v", name, got, value)
		}
	}

	labels := families["huawei_modem_network_type_info"].GetMetric()[0].GetLabel()
	found := false
	for _, l := range labels {
		if l.GetName() == "network_type" && l.GetValue() == "GPRS" {
			found = true
		}
	}
	if !found {
		t.Errorf("network_type label missing: %v", labels)
	}
}

func TestCollectFailure(t *testing.T) {
	client := &stubModem{statusErr: errors.New("unreachable")}
	families := gather(t, NewCollector(client))

	if got := gaugeValue(t, families, "huawei_modem_scrape_success"); got != 0 {
		t.Errorf("scrape_success = %v, want 0", got)
	}
	if _, ok := families["huawei_modem_signal_percent"]; ok {
		t.Error("signal reported after failed scrape")
	}
}

func TestClose(t *testing.T) {
	client := &stubModem{}
	if err := NewCollector(client).Close(); err != nil {
		t.Fatal(err)
	}
	if !client.closed {
		t.Error("client not closed")
	}
}
