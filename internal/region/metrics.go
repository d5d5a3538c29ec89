package region

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	regionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "section_regions",
		Help: "The number of loaded render regions.",
	})

	deviceMemory = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "section_device_memory_bytes",
		Help: "The device memory held by region arenas.",
	}, []string{
		"state",
	})

	uploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "section_uploaded_bytes",
		Help: "The number of mesh bytes copied to region arenas.",
	})
)

func instrumentRegions(n int) {
	regionCount.Set(float64(n))
}

func instrumentDeviceMemory(used, allocated int) {
	deviceMemory.WithLabelValues("used").Set(float64(used))
	deviceMemory.WithLabelValues("allocated").Set(float64(allocated))
}

func instrumentUpload(n int) {
	uploadedBytes.Add(float64(n))
}
