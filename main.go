package main

import (
	"log"
	"os"

	"friopro-backend/access"
	"friopro-backend/clients"
	"friopro-backend/conn"
	"friopro-backend/equipments"
	"friopro-backend/licenses"
	"friopro-backend/login"
	"friopro-backend/maintenance"
	"friopro-backend/migrations"
	"friopro-backend/payments"
	"friopro-backend/plans"
	"friopro-backend/profile"
	"friopro-backend/stats"
	"friopro-backend/usage"
	"friopro-backend/workorders"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] sin archivo .env, usando variables de entorno")
	}

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("[main] conexión MySQL: %v", err)
	}
	defer db.Close()

	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("[main] migraciones: %v", err)
	}
	if err := migrations.SeedDefaultPlans(); err != nil {
		log.Fatalf("[main] seed planes: %v", err)
	}
	if err := migrations.SeedSuperAdmin(); err != nil {
		log.Fatalf("[main] seed admin: %v", err)
	}

	accessSvc := access.NewService(access.NewSQLStore(db))
	planRepo := plans.NewRepository(db)
	licenseRepo := licenses.NewRepository(db)
	usageRepo := usage.NewRepository(db)
	clientRepo := clients.NewRepository(db)
	equipmentRepo := equipments.NewRepository(db)
	workOrderRepo := workorders.NewRepository(db)
	maintenanceRepo := maintenance.NewRepository(db)
	paymentRepo := payments.NewRepository(db)

	r := gin.Default()

	login.RegisterRoutes(r)
	access.NewHandler(accessSvc).RegisterRoutes(r)
	plans.NewHandler(planRepo).RegisterRoutes(r)
	licenses.NewHandler(licenseRepo).RegisterRoutes(r)
	usage.NewHandler(usageRepo).RegisterRoutes(r)
	clients.NewHandler(clientRepo, accessSvc).RegisterRoutes(r)
	equipments.NewHandler(equipmentRepo, accessSvc).RegisterRoutes(r)
	workorders.NewHandler(workOrderRepo, accessSvc, usageRepo, workorders.NewAIClient()).RegisterRoutes(r)
	maintenance.NewHandler(maintenanceRepo, equipmentRepo, accessSvc).RegisterRoutes(r)
	payments.NewHandler(paymentRepo, planRepo, licenseRepo).RegisterRoutes(r)
	profile.NewHandler(db, licenseRepo).RegisterRoutes(r)
	stats.NewHandler(db, usageRepo).RegisterRoutes(r)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	r.Static("/uploads", uploadDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("[main] escuchando en :%s", port)
	r.Run(":" + port)
}
