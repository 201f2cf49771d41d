package mercadopago

import "github.com/studiodanca/pagamentos/pkg/payments/types"

// rejectionReasons maps Mercado Pago status_detail codes for rejected
// payments to the message shown to the school staff. Extend by code as new
// ones show up in the logs.
var rejectionReasons = map[string]types.Reason{
	"cc_rejected_bad_filled_card_number": {
		Title:          "Número do cartão inválido",
		Message:        "O número do cartão informado está incorreto.",
		Recommendation: "Peça ao responsável para conferir o número e tentar novamente.",
	},
	"cc_rejected_bad_filled_date": {
		Title:          "Data de validade inválida",
		Message:        "A data de validade do cartão está incorreta.",
		Recommendation: "Peça ao responsável para conferir a validade do cartão.",
	},
	"cc_rejected_bad_filled_security_code": {
		Title:          "Código de segurança inválido",
		Message:        "O código de segurança (CVV) está incorreto.",
		Recommendation: "Peça ao responsável para conferir o CVV no verso do cartão.",
	},
	"cc_rejected_bad_filled_other": {
		Title:          "Dados do cartão incorretos",
		Message:        "Algum dado do cartão foi preenchido incorretamente.",
		Recommendation: "Peça ao responsável para revisar todos os dados e tentar novamente.",
	},
	"cc_rejected_high_risk": {
		Title:          "Pagamento recusado por segurança",
		Message:        "O pagamento foi recusado pela análise antifraude do emissor.",
		Recommendation: "Sugira outro meio de pagamento ou contato com o banco emissor.",
	},
	"cc_rejected_insufficient_amount": {
		Title:          "Saldo insuficiente",
		Message:        "O cartão não tem limite ou saldo suficiente para este pagamento.",
		Recommendation: "Sugira outro cartão ou outro meio de pagamento.",
	},
	"cc_rejected_max_attempts": {
		Title:          "Limite de tentativas excedido",
		Message:        "O número máximo de tentativas com este cartão foi atingido.",
		Recommendation: "Aguarde algumas horas ou use outro meio de pagamento.",
	},
	"cc_rejected_duplicated_payment": {
		Title:          "Pagamento duplicado",
		Message:        "Um pagamento com o mesmo valor já foi feito há poucos minutos.",
		Recommendation: "Confirme se o pagamento anterior foi concluído antes de repetir.",
	},
	"cc_rejected_card_disabled": {
		Title:          "Cartão desabilitado",
		Message:        "O cartão ainda não foi desbloqueado pelo emissor.",
		Recommendation: "Peça ao responsável para ligar para o banco e ativar o cartão.",
	},
}

var genericRejection = types.Reason{
	Title:          "Pagamento recusado",
	Message:        "O pagamento foi recusado pelo emissor.",
	Recommendation: "Tente novamente ou use outro meio de pagamento.",
}

// ReasonFor returns the rejection triple for a status_detail code, falling
// back to a generic one for unmapped codes.
func ReasonFor(statusDetail string) types.Reason {
	if reason, ok := rejectionReasons[statusDetail]; ok {
		return reason
	}
	return genericRejection
}
