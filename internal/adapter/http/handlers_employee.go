package http

import "net/http"

func (h *Handlers) listEmployees() http.HandlerFunc {
	return handleList(employeeNoun, h.Employees.List)
}

func (h *Handlers) getEmployee() http.HandlerFunc {
	return handleGet(employeeNoun, h.Employees.Get)
}

func (h *Handlers) createEmployee() http.HandlerFunc {
	return handleCreate(employeeNoun, maxRequestBodySize, h.Employees.Create)
}

func (h *Handlers) deleteEmployee() http.HandlerFunc {
	return handleDelete(employeeNoun, h.Employees.Delete)
}
