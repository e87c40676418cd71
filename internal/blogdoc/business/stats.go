// Метрики сохранения постов и статистика хранилища.
package business

import (
	"log/slog"

	blobstorage "github.com/aisa-it/blogdoc/internal/blogdoc/blob-storage"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	savedPosts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blogdoc",
		Name:      "posts_saved_total",
		Help:      "Saved posts",
	})
	rejectedPosts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blogdoc",
		Name:      "posts_rejected_total",
		Help:      "Posts rejected by the blob size limit",
	})
	reductionPercent = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blogdoc",
		Name:      "compact_reduction_percent",
		Help:      "Size reduction of the compact blob against the editor JSON",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90},
	})
	storedBlobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogdoc",
		Name:      "stored_blobs",
		Help:      "Number of stored posts",
	})
	storedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogdoc",
		Name:      "stored_blob_bytes",
		Help:      "Total size of stored compact blobs",
	})
)

// RegisterMetrics регистрирует метрики постов. Вызывается один раз при старте сервера.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{savedPosts, rejectedPosts, reductionPercent, storedBlobs, storedBytes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type StorageStats struct {
	Count int   `json:"count" yaml:"count"`
	Bytes int64 `json:"bytes" yaml:"bytes"`
	// Размер на диске с учетом сжатия бэкенда
	StoredBytes int64 `json:"stored_bytes" yaml:"stored_bytes"`
}

// Stats считает количество и суммарный размер сохраненных постов.
func (p *Posts) Stats() (StorageStats, error) {
	var stats StorageStats
	err := p.storage.List(func(info blobstorage.BlobInfo) error {
		stats.Count++
		stats.Bytes += info.Size
		stats.StoredBytes += info.StoredSize
		return nil
	})
	return stats, err
}

// RefreshStats обновляет gauge хранилища. Задача cron.
func (p *Posts) RefreshStats() {
	stats, err := p.Stats()
	if err != nil {
		slog.Error("Refresh storage stats", "err", err)
		return
	}
	storedBlobs.Set(float64(stats.Count))
	storedBytes.Set(float64(stats.Bytes))
	slog.Debug("Storage stats refreshed", "count", stats.Count, "bytes", stats.Bytes)
}
