package export

import (
	"github.com/zoonmattau/healthtracker-sub000/internal/auth"
	"github.com/zoonmattau/healthtracker-sub000/internal/logger"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/history.xlsx", authMiddleware, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		f, err := svc.Workbook(c.Context(), userID)
		if err != nil {
			logger.Error("export: workbook for %s: %v", userID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "export failed")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			logger.Error("export: write workbook for %s: %v", userID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "export failed")
		}
		c.Attachment("history.xlsx")
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	})
}
