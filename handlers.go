package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"leaseintake/models"
	"leaseintake/pkg/export"
	"leaseintake/pkg/extract"
	"leaseintake/pkg/pipeline"
	"leaseintake/pkg/store"
	"leaseintake/pkg/upload"

	"github.com/gin-gonic/gin"
)

var (
	docStore  *store.Store
	runner    *pipeline.Runner
	extractor extract.Extractor
)

func setupRoutes(r *gin.Engine) {
	r.POST("/uploads", uploadHandler)
	r.POST("/extract", extractHandler)

	r.GET("/documents", listDocumentsHandler)
	r.GET("/documents/:id", getDocumentHandler)
	r.DELETE("/documents/:id", deleteDocumentHandler)
	r.PUT("/documents/:id/review", saveReviewHandler)
	r.PUT("/documents/:id/unsaved", unsavedChangesHandler)

	r.POST("/datasets", createDatasetHandler)
	r.GET("/datasets", listDatasetsHandler)
	r.PUT("/datasets/active", selectDatasetHandler)
	r.POST("/datasets/:id/documents", bulkTagHandler)
	r.DELETE("/datasets/:id/documents/:docId", untagHandler)
	r.GET("/datasets/:id/duplicates", duplicatesHandler)

	r.GET("/export/csv", exportCSVHandler)
	r.GET("/export/xlsx", exportXLSXHandler)
}

// uploadHandler accepts one multipart PDF, validates it, registers the
// document and kicks off its pipeline run. Optional repeated `dataset_ids`
// form values tag the document at registration; unknown ids are dropped.
func uploadHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrNoFile.Error()})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if err := upload.Validate(file.Filename, file.Size, contentType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	datasetIDs := c.PostFormArray("dataset_ids")

	// The run outlives this request on purpose: once started, a file's
	// pipeline goes to completion, there is no user abort.
	id := runner.Enqueue(context.Background(), file.Filename, file.Size, contentType, datasetIDs)

	c.JSON(http.StatusOK, gin.H{
		"documentId": id,
		"filename":   file.Filename,
		"size":       file.Size,
	})
}

// extractHandler exposes the extraction collaborator directly: delay, 5%
// failure and all. The pipeline calls the same extractor in-process.
func extractHandler(c *gin.Context) {
	var req struct {
		DocumentID string `json:"documentId"`
		Filename   string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID is required"})
		return
	}
	if req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filename is required"})
		return
	}

	res, err := extractor.Extract(c.Request.Context(), req.DocumentID, req.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "documentId": req.DocumentID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documentId":    req.DocumentID,
		"extractedData": res.Data,
		"qualityScore":  res.QualityScore,
		"processedAt":   res.ProcessedAt.Format(time.RFC3339),
	})
}

// viewFor resolves which dataset filter a read endpoint should use: the
// `dataset` query param when present, the store's active selection
// otherwise.
func viewFor(c *gin.Context) []*models.Document {
	datasetID, ok := c.GetQuery("dataset")
	if !ok {
		datasetID = docStore.ActiveDatasetID()
	}
	return docStore.View(datasetID)
}

func listDocumentsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, viewFor(c))
}

func getDocumentHandler(c *gin.Context) {
	doc, ok := docStore.Document(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// deleteDocumentHandler always reports success: deleting an id that is
// already gone is converged state, not an error.
func deleteDocumentHandler(c *gin.Context) {
	docStore.DeleteDocument(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

func saveReviewHandler(c *gin.Context) {
	var req struct {
		ExtractedData *models.ExtractedData `json:"extractedData" binding:"required"`
		QualityScore  *int                  `json:"qualityScore"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := docStore.SaveReview(c.Param("id"), req.ExtractedData, req.QualityScore); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review saved"})
}

func unsavedChangesHandler(c *gin.Context) {
	var req struct {
		HasUnsavedChanges bool `json:"hasUnsavedChanges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := docStore.SetUnsavedChanges(c.Param("id"), req.HasUnsavedChanges); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func createDatasetHandler(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := docStore.CreateDataset(req.Name, req.Description, req.Color)
	if errors.Is(err, store.ErrDuplicateName) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func listDatasetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, docStore.Datasets())
}

// selectDatasetHandler sets the view filter; null or empty datasetId means
// "all documents".
func selectDatasetHandler(c *gin.Context) {
	var req struct {
		DatasetID *string `json:"datasetId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := ""
	if req.DatasetID != nil {
		id = *req.DatasetID
	}
	docStore.SelectDataset(id)
	c.JSON(http.StatusOK, gin.H{"activeDatasetId": id})
}

// bulkTagHandler tags every listed document into the dataset and reports
// which of them were filename duplicates of existing members, so the UI can
// warn without blocking.
func bulkTagHandler(c *gin.Context) {
	datasetID := c.Param("id")
	if _, ok := docStore.Dataset(datasetID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return
	}
	var req struct {
		DocumentIDs []string `json:"documentIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	duplicates := docStore.DetectDuplicates(datasetID, req.DocumentIDs)
	docStore.BulkTag(datasetID, req.DocumentIDs)
	c.JSON(http.StatusOK, gin.H{"tagged": len(req.DocumentIDs), "duplicates": duplicates})
}

func untagHandler(c *gin.Context) {
	docStore.UntagDocument(c.Param("id"), c.Param("docId"))
	c.JSON(http.StatusOK, gin.H{"message": "untagged"})
}

func duplicatesHandler(c *gin.Context) {
	var candidates []string
	if raw := c.Query("documentIds"); raw != "" {
		candidates = strings.Split(raw, ",")
	}
	dups := docStore.DetectDuplicates(c.Param("id"), candidates)
	if dups == nil {
		dups = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": dups})
}

func exportCSVHandler(c *gin.Context) {
	rows := export.Rows(viewFor(c), docStore.Datasets())
	c.Header("Content-Disposition", `attachment; filename="documents.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
	}
}

func exportXLSXHandler(c *gin.Context) {
	rows := export.Rows(viewFor(c), docStore.Datasets())
	f, err := export.XLSX(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
	}
}
