package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"datanexus/internal/chain"
	"datanexus/internal/model"
	"datanexus/internal/service"
)

const (
	headerWalletAddress = "X-Wallet-Address"
	headerChainID       = "X-Chain-Id"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic here: parsing in,
// services do the work, mapping out.
func RegisterRoutes(app *fiber.App, db *sql.DB, regSvc service.RegistrationService, catSvc service.CatalogService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/datasets", ListDatasets(catSvc))
	api.Get("/datasets/files", ListStoredFiles(catSvc))
	api.Get("/datasets/:cid/status", GetRegistrationStatus(regSvc))
	api.Post("/datasets", RegisterDataset(regSvc))
	api.Post("/datasets/reconcile", ReconcileOrphans(regSvc))
}

// HealthCheck reports readiness: the journal database must answer a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a bare liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDatasets serves one catalog page with limit & offset, optionally
// filtered by owner.
func ListDatasets(catSvc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		page, err := catSvc.ListPage(c.UserContext(), offset, limit, service.Filter{Owner: c.Query("owner")})
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "LEDGER_UNAVAILABLE", "cannot read the dataset registry")
		}
		return c.JSON(page)
	}
}

// ListStoredFiles lists raw store contents, committed or not. This is the
// store's own view and may include orphans.
func ListStoredFiles(catSvc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := catSvc.ListStoredFiles(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "STORE_UNAVAILABLE", "cannot list stored files")
		}
		return c.JSON(res)
	}
}

// RegisterDataset runs one full registration (multipart/form-data, field
// name: file). Metadata comes from form fields, the caller's wallet
// snapshot from headers.
func RegisterDataset(regSvc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		chainID, _ := strconv.ParseUint(c.Get(headerChainID), 10, 64)
		req := service.RegistrationRequest{
			File:          f,
			FileName:      fh.Filename,
			FileSizeBytes: fh.Size,
			Draft: model.MetadataDraft{
				Name:       c.FormValue("name"),
				Provider:   c.FormValue("provider"),
				Domain:     model.Domain(c.FormValue("domain")),
				License:    model.License(c.FormValue("license")),
				Access:     model.Access(c.FormValue("access")),
				Visibility: model.Visibility(c.FormValue("visibility")),
			},
			Wallet: chain.Snapshot{
				ChainID: chain.ID(chainID),
				Sender:  c.Get(headerWalletAddress),
			},
		}

		rec, err := regSvc.Register(c.UserContext(), req)
		if err != nil {
			return writeRegistrationError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// GetRegistrationStatus reports the phase this service last journaled for a
// CID. Serves the journal's view, which lags the ledger by design.
func GetRegistrationStatus(regSvc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Params("cid")

		reg, err := regSvc.Status(c.UserContext(), cid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no registration recorded for this cid")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"cid":       reg.CID,
			"phase":     reg.Phase,
			"txHash":    reg.TxHash,
			"updatedAt": reg.UpdatedAt,
		})
	}
}

// ReconcileOrphans triggers one reconciliation run and reports the tally.
func ReconcileOrphans(regSvc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := regSvc.Reconcile(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "reconciliation run failed")
		}
		return c.JSON(report)
	}
}
