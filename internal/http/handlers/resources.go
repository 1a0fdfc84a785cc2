package handlers

import (
	"net/http"

	"backoffice/internal/http/middleware"
	"backoffice/internal/listing"
	"backoffice/internal/resources"
	"backoffice/internal/services"
	"backoffice/internal/validation"

	"github.com/gin-gonic/gin"
)

// ListResources describes every screen the dashboard can open.
func ListResources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": current().Registry.Descriptors()})
}

func lookup(c *gin.Context) (resources.Resource, bool) {
	res, err := current().Registry.Get(c.Param("resource"))
	if err != nil {
		RespondDomainError(c, err)
		return nil, false
	}
	return res, true
}

// GetResourcePage proxies one page of a list: ?page=&limit=&search=&sort_by=&sort_order=&<filters>.
func GetResourcePage(c *gin.Context) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	svc, ok := resourceService(c)
	if !ok {
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query(), res.Spec().Query)
	page, err := svc.List(c.Request.Context(), res.Spec().Name, q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Rows,
		"meta":    page.Meta,
		"info":    page.Info,
		"window":  listing.WindowFromMeta(page.Meta, q.PerPage),
	})
}

// CreateResource accepts a JSON payload, or a multipart form with a JSON
// "payload" field and an optional "image" file that is uploaded first.
func CreateResource(c *gin.Context) {
	saveResource(c, 0)
}

func UpdateResource(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	saveResource(c, id)
}

func saveResource(c *gin.Context, id int64) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	spec := res.Spec()
	payload := spec.NewPayload()

	svc, ok := resourceService(c)
	if !ok {
		return
	}

	var preview string
	if isMultipart(c) {
		if !bindForm(c, payload) {
			return
		}
		// The form is checked before the image leaves the gateway; the
		// service validates again once image_name is set.
		if err := validation.Struct(payload); err != nil {
			RespondDomainError(c, err)
			return
		}
		if fh, err := c.FormFile("image"); err == nil {
			f, err := fh.Open()
			if err != nil {
				RespondError(c, http.StatusBadRequest, "cannot read image", err)
				return
			}
			defer f.Close()
			media := services.MediaService{Client: svc.Client, Audit: svc.Audit, RequestID: svc.RequestID}
			img, err := media.Attach(c.Request.Context(), spec.ImageFolder, payload, services.ImageUpload{Filename: fh.Filename, Content: f})
			if err != nil {
				RespondDomainError(c, err)
				return
			}
			preview = img.URL
		}
	} else if !BindJSONOrError(c, payload) {
		return
	}

	var (
		out any
		err error
	)
	status := http.StatusCreated
	if id > 0 {
		out, err = svc.Update(c.Request.Context(), spec.Name, id, payload)
		status = http.StatusOK
	} else {
		out, err = svc.Create(c.Request.Context(), spec.Name, payload)
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	resp := gin.H{"success": true, "data": out}
	if preview != "" {
		resp["image_url"] = preview
	}
	c.JSON(status, resp)
}

func DeleteResource(c *gin.Context) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	svc, ok := resourceService(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), res.Spec().Name, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderRequest struct {
	Orders *int64 `json:"orders"`
}

// ReorderResource assigns a rank to one row: body {"orders": rank}.
func ReorderResource(c *gin.Context) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req reorderRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Orders == nil {
		RespondError(c, http.StatusBadRequest, "orders is required", nil)
		return
	}
	svc, ok := resourceService(c)
	if !ok {
		return
	}
	if err := svc.Reorder(c.Request.Context(), res.Spec().Name, id, *req.Orders); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id, "orders": *req.Orders}})
}

// ExportResource renders the requested page as a PDF download.
func ExportResource(c *gin.Context) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	svc, ok := resourceService(c)
	if !ok {
		return
	}
	spec := res.Spec()
	q := listing.ParseQuery(c.Request.URL.Query(), spec.Query)
	page, err := svc.List(c.Request.Context(), spec.Name, q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	pdf, filename, err := services.ExportService{RequestID: middleware.GetRequestID(c)}.RenderPage(spec, page, q.PerPage)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to render pdf", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
