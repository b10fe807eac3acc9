package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers
	"runtime"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/car-pooling/internal/model"
)

// StatsSource reports the current allocation state.
type StatsSource interface {
	Stats() model.PoolStats
}

// heapInUse reports the bytes of live heap objects; replaced in tests.
var heapInUse = func() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// Health is the status endpoint used by load balancers and monitoring
// systems.  It answers 200 with {"status": "ok"} while every indicator is
// up.  When the heap grows past maxHeapBytes it answers 503 with
// {"status": "error"} and the failing indicator under "error".  A zero
// maxHeapBytes disables the heap indicator.  The pool counters are always
// reported under details.pool.
func Health(src StatsSource, maxHeapBytes uint64) echo.HandlerFunc {
	return func(c echo.Context) error {
		details := echo.Map{"pool": src.Stats()}
		failed := echo.Map{}

		if maxHeapBytes > 0 {
			used := heapInUse()
			heap := echo.Map{"status": "up", "used_bytes": used, "limit_bytes": maxHeapBytes}
			if used > maxHeapBytes {
				heap["status"] = "down"
				failed["memory_heap"] = heap
			}
			details["memory_heap"] = heap
		}

		if len(failed) > 0 {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":  "error",
				"error":   failed,
				"details": details,
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "details": details})
	}
}
