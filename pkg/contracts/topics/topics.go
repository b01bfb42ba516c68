package topics

const (
	// Extratos publicados pelo feed de resultados
	Extractos = "extractos"

	// Gatilhos de recálculo (agente, fecha)
	ApuestaRegistrada    = "apuesta_registrada"
	MovimientoRegistrado = "movimiento_registrado"
	ExtractoActualizado  = "extracto_actualizado"

	// DLQs
	RecalculoDLQ = "recalculo_dlq"
)

// Canal Redis Pub/Sub anunciando saldos recalculados
const ChannelSaldosActualizados = "saldos_actualizados"
