package postgres_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresListingRepository реализует ListingStoragePort для PostgreSQL
type PostgresListingRepository struct {
	dbPool *pgxpool.Pool
}

// NewPostgresListingRepository создает новый экземпляр PostgresListingRepository
func NewPostgresListingRepository(dbPool *pgxpool.Pool) (*PostgresListingRepository, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("postgres listing repository: dbPool cannot be nil")
	}
	return &PostgresListingRepository{dbPool: dbPool}, nil
}

// Exists проверяет, известен ли ключ (source, external_id).
func (r *PostgresListingRepository) Exists(ctx context.Context, source, externalID string) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "Exists",
	})

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM listings WHERE source = $1 AND external_id = $2)`

	err := r.dbPool.QueryRow(ctx, query, source, externalID).Scan(&exists)
	if err != nil {
		repoLogger.Error("Error checking listing existence", err, port.Fields{
			"source":      source,
			"external_id": externalID,
		})
		return false, &domain.StorageError{Op: "exists", Err: err}
	}

	return exists, nil
}

// Upsert записывает объявление атомарно. Новизна определяется самой базой:
// (xmax = 0) истинно только для строки, вставленной этим же запросом,
// поэтому при конкурентных прогонах ключ становится "new" ровно один раз.
// first_seen_at при обновлении не трогается.
func (r *PostgresListingRepository) Upsert(ctx context.Context, listing domain.Listing) (domain.UpsertStatus, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "Upsert",
	})

	featuresJSON, err := json.Marshal(listing.Features)
	if err != nil {
		return "", &domain.StorageError{Op: "upsert: marshal features", Err: err}
	}

	fingerprint := calculateFingerprint(buildFingerprintPayload(listing))

	query := `
        INSERT INTO listings (
            source, external_id, url, title, description,
            price, surface_area, bedrooms, bathrooms, floor,
            province, city, zone, address, postal_code,
            latitude, longitude, operation_type, property_type,
            features, agency, images, fingerprint, published_at,
            first_seen_at, last_seen_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
            $21, $22, $23, $24, NOW(), NOW()
        )
        ON CONFLICT (source, external_id) DO UPDATE SET
            url = EXCLUDED.url,
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            price = EXCLUDED.price,
            surface_area = EXCLUDED.surface_area,
            bedrooms = EXCLUDED.bedrooms,
            bathrooms = EXCLUDED.bathrooms,
            floor = EXCLUDED.floor,
            province = EXCLUDED.province,
            city = EXCLUDED.city,
            zone = EXCLUDED.zone,
            address = EXCLUDED.address,
            postal_code = EXCLUDED.postal_code,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            operation_type = EXCLUDED.operation_type,
            property_type = EXCLUDED.property_type,
            features = EXCLUDED.features,
            agency = EXCLUDED.agency,
            images = EXCLUDED.images,
            fingerprint = EXCLUDED.fingerprint,
            published_at = EXCLUDED.published_at,
            last_seen_at = NOW()
        RETURNING (xmax = 0) AS inserted
    `

	var inserted bool
	err = r.dbPool.QueryRow(ctx, query,
		listing.Source, listing.ExternalID, listing.URL, listing.Title, listing.Description,
		listing.Price, listing.SurfaceArea, listing.Bedrooms, listing.Bathrooms, listing.Floor,
		listing.Location.Province, listing.Location.City, listing.Location.Zone,
		listing.Location.Address, listing.Location.PostalCode,
		listing.Latitude, listing.Longitude, listing.OperationType, listing.PropertyType,
		featuresJSON, listing.Agency, listing.Images, fingerprint, listing.PublishedAt,
	).Scan(&inserted)
	if err != nil {
		repoLogger.Error("Error upserting listing", err, port.Fields{
			"source":      listing.Source,
			"external_id": listing.ExternalID,
		})
		return "", &domain.StorageError{Op: "upsert", Err: err}
	}

	if inserted {
		repoLogger.Debug("Inserted new listing", port.Fields{
			"source":      listing.Source,
			"external_id": listing.ExternalID,
		})
		return domain.UpsertNew, nil
	}
	return domain.UpsertSeen, nil
}

// PurgeStale удаляет объявления, не встречавшиеся в выдаче с указанного момента.
func (r *PostgresListingRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "PurgeStale",
	})

	repoLogger.Debug("Purging stale listings", port.Fields{"older_than": olderThan})

	tag, err := r.dbPool.Exec(ctx, `DELETE FROM listings WHERE last_seen_at < $1`, olderThan)
	if err != nil {
		repoLogger.Error("Error purging stale listings", err, port.Fields{"older_than": olderThan})
		return 0, &domain.StorageError{Op: "purge stale", Err: err}
	}

	purged := tag.RowsAffected()
	if purged > 0 {
		repoLogger.Info("Purged stale listings", port.Fields{"count": purged})
	}
	return purged, nil
}

// FindRecent возвращает сохраненные объявления по необязательным фильтрам,
// свежие сверху.
func (r *PostgresListingRepository) FindRecent(ctx context.Context, filters domain.ListingFilters) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "FindRecent",
	})

	whereClause, args := applyListingFilters(filters)

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
        SELECT
            source, external_id, url, title, description,
            price, surface_area, bedrooms, bathrooms, floor,
            province, city, zone, address, postal_code,
            latitude, longitude, operation_type, property_type,
            features, agency, images, published_at,
            first_seen_at, last_seen_at
        FROM listings
        %s
        ORDER BY last_seen_at DESC, id DESC
        LIMIT $%d
    `, whereClause, len(args))

	rows, err := r.dbPool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Error querying listings", err, nil)
		return nil, &domain.StorageError{Op: "find recent", Err: err}
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		var l domain.Listing
		var featuresJSON []byte

		err := rows.Scan(
			&l.Source, &l.ExternalID, &l.URL, &l.Title, &l.Description,
			&l.Price, &l.SurfaceArea, &l.Bedrooms, &l.Bathrooms, &l.Floor,
			&l.Location.Province, &l.Location.City, &l.Location.Zone,
			&l.Location.Address, &l.Location.PostalCode,
			&l.Latitude, &l.Longitude, &l.OperationType, &l.PropertyType,
			&featuresJSON, &l.Agency, &l.Images, &l.PublishedAt,
			&l.FirstSeenAt, &l.LastSeenAt,
		)
		if err != nil {
			repoLogger.Error("Error scanning listing row", err, nil)
			return nil, &domain.StorageError{Op: "find recent: scan", Err: err}
		}

		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &l.Features); err != nil {
				repoLogger.Error("Error unmarshaling listing features", err, port.Fields{
					"source":      l.Source,
					"external_id": l.ExternalID,
				})
				return nil, &domain.StorageError{Op: "find recent: unmarshal features", Err: err}
			}
		}

		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error iterating listing rows", err, nil)
		return nil, &domain.StorageError{Op: "find recent", Err: err}
	}

	repoLogger.Debug("Found listings", port.Fields{"count": len(listings)})
	return listings, nil
}
