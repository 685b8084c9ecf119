package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/geostore-service/internal/domain"
)

const (
	tileKeyPrefix = "tile"
	ttlZoomBase   = 5
	ttlExponent   = 0.9
	ttlJitter     = 0.1
)

// LayerCacheKey - ключ слоя по умолчанию (может быть заменен пользовательским ключом)
func LayerCacheKey(layer *domain.Layer) string {
	return "layer" + strconv.FormatInt(layer.ID, 10)
}

// TileCacheKey строит детерминированный ключ тайла. Фильтры входят в ключ
// через SHA-224 их канонического JSON, поэтому разные фильтры не совпадают.
func TileCacheKey(layerKey string, addr domain.TileAddress, params domain.TileParams) string {
	limit := "all"
	if params.FeaturesLimit != nil {
		limit = strconv.Itoa(*params.FeaturesLimit)
	}

	return fmt.Sprintf("%s:%s:%d:%d:%d:%d:%s:%s:%s",
		tileKeyPrefix, layerKey,
		addr.X, addr.Y, addr.Z,
		params.PixelBuffer,
		documentDigest(params.FeaturesFilter),
		documentDigest(params.PropertiesFilter),
		limit,
	)
}

// documentDigest - SHA-224 канонического JSON (ключи map сортируются encoding/json)
func documentDigest(doc interface{}) string {
	raw, err := json.Marshal(doc)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", doc))
	}
	sum := sha256.Sum224(raw)
	return hex.EncodeToString(sum[:])
}

// TileTTL = base * (log_z 5)^0.9 * U(0.9, 1.1).
// rnd возвращает число из [0, 1); z меньше 2 считается равным 2.
func TileTTL(base time.Duration, z int, rnd func() float64) time.Duration {
	if z < 2 {
		z = 2
	}
	scale := math.Pow(math.Log(ttlZoomBase)/math.Log(float64(z)), ttlExponent)
	jitter := 1 - ttlJitter + 2*ttlJitter*rnd()
	return time.Duration(float64(base) * scale * jitter)
}
