package erp

import "time"

// Option is a value/label pair used by the select lists of the ERP
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NamedEntity is the id/name shape shared by lookup tables
type NamedEntity struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

// CreateResult is the body returned by create mutations: the mutation
// name mapped to the new record id.
type CreateResult map[string]struct {
	ID string `json:"id"`
}

// ID returns the id created by mutation, if present
func (r CreateResult) ID(mutation string) (string, bool) {
	v, ok := r[mutation]
	if !ok || v.ID == "" {
		return "", false
	}
	return v.ID, true
}

// IncidentOptions are the choices offered when filing an incident
type IncidentOptions struct {
	IncidentTypes      []Option `json:"tiposIncidencia"`
	IncidentStates     []Option `json:"estadosIncidencia"`
	Machines           []Option `json:"maquinas"`
	ProductionOrders   []Option `json:"ordenesProduccion"`
	ProductionStations []Option `json:"estacionesProduccion"`
}

// WarehouseOptions are the choices offered when creating a warehouse
type WarehouseOptions struct {
	WarehouseTypes []Option `json:"tiposBodega"`
}

// CycleCountOptions are the choices offered when recording a cycle count
type CycleCountOptions struct {
	Products       []Option `json:"productos"`
	Warehouses     []Option `json:"bodegas"`
	ProductionLots []Option `json:"lotesProduccion"`
	UnitsOfMeasure []Option `json:"unidadesMedida"`
}

// CostOptions are the choices offered when booking an order cost
type CostOptions struct {
	CostTypes        []Option `json:"tiposCosto"`
	ProductionOrders []Option `json:"ordenesProduccion"`
}

// InventoryOptions are the choices offered for inventory lots
type InventoryOptions struct {
	Products       []Option `json:"productos"`
	ProductionLots []Option `json:"lotesProduccion"`
	Warehouses     []Option `json:"bodegas"`
	UnitsOfMeasure []Option `json:"unidadesMedida"`
}

// MovementOptions are the choices offered for inventory movements
type MovementOptions struct {
	Warehouses    []Option `json:"bodegas"`
	MovementTypes []Option `json:"tiposMovimiento"`
}

// ProductionOrderOptions are the choices offered for production orders
type ProductionOrderOptions struct {
	UnitsOfMeasure []Option `json:"unidadesMedida"`
	OrderStates    []Option `json:"estadosOrden"`
	Products       []Option `json:"productos"`
}

// ProductOptions are the choices offered when creating a product
type ProductOptions struct {
	ProductTypes     []Option `json:"tiposProducto"`
	ValuationMethods []Option `json:"metodosValoracion"`
	UnitsOfMeasure   []Option `json:"unidadesMedida"`
}

// ReservationOptions are the choices offered for material reservations
type ReservationOptions struct {
	ProductionOrders []Option `json:"ordenesProduccion"`
	Products         []Option `json:"productos"`
	ProductionLots   []Option `json:"lotesProduccion"`
	UnitsOfMeasure   []Option `json:"unidadesMedida"`
}

// ProductivityIndicator reports output per production order
type ProductivityIndicator struct {
	OrderID       int     `json:"ordenId"`
	Product       string  `json:"producto"`
	UnitsProduced float64 `json:"unidadesProducidas"`
	HoursWorked   float64 `json:"horasTrabajadas"`
	Efficiency    float64 `json:"eficiencia"`
}

// OrderCostReport breaks down the cost of a production order
type OrderCostReport struct {
	OrderID      int     `json:"ordenId"`
	Product      string  `json:"producto"`
	MaterialCost float64 `json:"costoMaterial"`
	LaborCost    float64 `json:"costoManoObra"`
	OverheadCost float64 `json:"costoIndirecto"`
	Total        float64 `json:"total"`
}

// MaterialCostReport is the cost of one material across orders
type MaterialCostReport struct {
	Material  string  `json:"material"`
	Quantity  float64 `json:"cantidad"`
	UnitCost  float64 `json:"costoUnitario"`
	TotalCost float64 `json:"costoTotal"`
}

// CostKPI aggregates cost indicators
type CostKPI struct {
	TotalCost        float64 `json:"totalCostos"`
	AverageOrderCost float64 `json:"costoPromedioOrden"`
	Materials        float64 `json:"materiales"`
	Labor            float64 `json:"manoObra"`
	Overhead         float64 `json:"indirectos"`
}

// TimeKPI compares planned and actual hours
type TimeKPI struct {
	PlannedHours float64 `json:"horasPlanificadas"`
	ActualHours  float64 `json:"horasReales"`
	Compliance   float64 `json:"cumplimiento"`
}

// ProductionKPI aggregates production indicators
type ProductionKPI struct {
	FinishedOrders float64 `json:"ordenesFinalizadas"`
	Efficiency     float64 `json:"eficiencia"`
	Waste          float64 `json:"desperdicio"`
	AverageHours   float64 `json:"horasPromedio"`
}

// TimeSeriesPoint is one dated value of a KPI series
type TimeSeriesPoint struct {
	Date  time.Time `json:"fecha"`
	Value float64   `json:"valor"`
}

// Dashboard is the consolidated KPI view
type Dashboard struct {
	Production ProductionKPI `json:"produccion"`
	Costs      CostKPI       `json:"costos"`
	Times      TimeKPI       `json:"tiempos"`
}

// Depreciation kinds
const (
	DepreciationActual    = "Real"
	DepreciationProjected = "Proyectado"
)

// DepreciationPoint is one year on a machine's depreciation curve
type DepreciationPoint struct {
	Year              int     `json:"año"`
	Date              string  `json:"fecha"`
	BookValue         float64 `json:"valorEnLibros"`
	DepreciationValue float64 `json:"valorDepreciacion"`
	AccumulatedValue  float64 `json:"valorAcumulado"`
	Kind              string  `json:"tipo"`
}

// Depreciation is a booked depreciation period. Amounts are decimal strings.
type Depreciation struct {
	ID                      string `json:"id"`
	MachineID               string `json:"maquinaId"`
	Period                  string `json:"periodo"`
	PeriodDepreciation      string `json:"depreciacionPeriodo"`
	AccumulatedDepreciation string `json:"depreciacionAcumulada"`
	NetValue                string `json:"valorNeto"`
}

// Machine is a depreciable production asset
type Machine struct {
	ID              string   `json:"id"`
	Code            string   `json:"codigo"`
	Name            string   `json:"nombre"`
	Description     string   `json:"descripcion,omitempty"`
	SerialNumber    string   `json:"numeroSerie,omitempty"`
	PurchaseDate    string   `json:"fechaCompra"`
	PurchaseCost    float64  `json:"costoCompra"`
	SalvageValue    *float64 `json:"valorRescate,omitempty"`
	UsefulLifeYears int      `json:"vidaUtilAnios"`
	CreatedAt       string   `json:"creadoEn"`
}

// CostCenter groups costs for reporting
type CostCenter struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

// Attachment kinds
const (
	AttachmentPhoto = "FOTO"
	AttachmentAudio = "AUDIO"
)

// Attachment is a file uploaded with an incident
type Attachment struct {
	ID           string `json:"id"`
	Kind         string `json:"tipo"`
	OriginalName string `json:"nombreOriginal"`
	URL          string `json:"url"`
}

// Incident is a reported production incident
type Incident struct {
	ID             string       `json:"id"`
	Code           string       `json:"codigo"`
	Title          string       `json:"titulo"`
	Description    string       `json:"descripcion,omitempty"`
	IncidentTypeID string       `json:"tipoIncidenciaId,omitempty"`
	StateID        string       `json:"estadoId,omitempty"`
	MachineID      string       `json:"maquinaId,omitempty"`
	CreatedAt      string       `json:"creadoEn"`
	Attachments    []Attachment `json:"archivos"`
}

// Role is an administrative role
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tag is an area of the ERP that policies refer to
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Permission is an action that can be granted on a tag
type Permission struct {
	ID          int    `json:"id"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Account is a user as listed by the administration endpoints
type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
	Roles    []Role `json:"roles"`
}
