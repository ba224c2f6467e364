package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors クーポン業務のPrometheusメトリクス
type Collectors struct {
	registry prometheus.Gatherer

	importRows      *prometheus.CounterVec
	importConfirms  *prometheus.CounterVec
	importedCoupons prometheus.Counter
	redemptions     *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	exportedCoupons prometheus.Counter
}

// NewCollectors 専用レジストリにメトリクスを登録してCollectorsを作成
func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newCollectors(reg, reg)
}

func newCollectors(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collectors {
	c := &Collectors{
		registry: gatherer,
		importRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_import_rows_total",
				Help: "Rows processed by import staging, by outcome.",
			},
			[]string{"outcome"},
		),
		importConfirms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_import_confirms_total",
				Help: "Import confirmations, by result.",
			},
			[]string{"result"},
		),
		importedCoupons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coupon_imported_total",
			Help: "Coupons created by confirmed imports.",
		}),
		redemptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_redemptions_total",
				Help: "Redemption gate calls, by operation and result.",
			},
			[]string{"operation", "result"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_registrations_total",
				Help: "Coupon registrations, by result.",
			},
			[]string{"result"},
		),
		exportedCoupons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coupon_exported_total",
			Help: "Coupons written to export workbooks.",
		}),
	}
	reg.MustRegister(
		c.importRows,
		c.importConfirms,
		c.importedCoupons,
		c.redemptions,
		c.registrations,
		c.exportedCoupons,
	)
	return c
}

// Handler /metrics用のHTTPハンドラを返す
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveImportRows 取り込み行の振り分け結果を記録
func (c *Collectors) ObserveImportRows(accepted, skipped, rejected int) {
	c.importRows.WithLabelValues("accepted").Add(float64(accepted))
	c.importRows.WithLabelValues("skipped").Add(float64(skipped))
	c.importRows.WithLabelValues("rejected").Add(float64(rejected))
}

// ObserveImportConfirm 取り込み確定の結果を記録
func (c *Collectors) ObserveImportConfirm(result string, inserted int) {
	c.importConfirms.WithLabelValues(result).Inc()
	if inserted > 0 {
		c.importedCoupons.Add(float64(inserted))
	}
}

// ObserveRedemption 利用判定・利用確定の結果を記録
func (c *Collectors) ObserveRedemption(operation, result string) {
	c.redemptions.WithLabelValues(operation, result).Inc()
}

// ObserveRegistration 登録結果を記録
func (c *Collectors) ObserveRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// ObserveExport エクスポート件数を記録
func (c *Collectors) ObserveExport(count int) {
	c.exportedCoupons.Add(float64(count))
}
