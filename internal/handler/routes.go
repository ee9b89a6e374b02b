package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the auth and patient routes on api
func RegisterRoutes(api *gin.RouterGroup, authHandler *AuthHandler, patientHandler *PatientHandler, validator TokenValidator) {
	useJSONFieldNames()
	requireAuth := AuthMiddleware(validator)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.GetMe)
	}

	patients := api.Group("/patients")
	{
		patients.GET("/qr/:qrCode", patientHandler.GetByQRCode)

		patients.POST("", requireAuth, patientHandler.Create)
		patients.GET("", requireAuth, patientHandler.List)
		patients.GET("/:id", requireAuth, patientHandler.Get)
		patients.PUT("/:id", requireAuth, patientHandler.Update)
		patients.DELETE("/:id", requireAuth, patientHandler.Delete)
	}
}
