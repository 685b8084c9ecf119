package domain

// GeometryOpKind - вид пакетной геометрической операции
type GeometryOpKind string

const (
	OpSimplify  GeometryOpKind = "simplify"
	OpBuffer    GeometryOpKind = "buffer"
	OpMakeValid GeometryOpKind = "make_valid"
	OpCentroid  GeometryOpKind = "centroid"
)

// GeometryOp - операция обработки слоя с проверенным параметром
type GeometryOp struct {
	Kind  GeometryOpKind `json:"kind"`
	Param float64        `json:"param,omitempty"`
}
