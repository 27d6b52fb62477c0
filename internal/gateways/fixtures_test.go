package gateways

const (
	testSaleID = "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"

	stripePaymentIntentSucceeded = `{
  "id": "evt_1PbXyZ",
  "object": "event",
  "type": "payment_intent.succeeded",
  "created": 1718210703,
  "data": {
    "object": {
      "id": "pi_3PbXyZ",
      "object": "payment_intent",
      "amount": 10000,
      "amount_received": 10000,
      "currency": "brl",
      "payment_method_types": ["card"],
      "metadata": {"sale_id": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10", "fee_cents": "500"},
      "status": "succeeded"
    }
  }
}`

	stripeChargeRefunded = `{
  "id": "evt_2RfNd",
  "object": "event",
  "type": "charge.refunded",
  "created": 1718300000,
  "data": {
    "object": {
      "id": "ch_3PbXyZ",
      "object": "charge",
      "amount": 10000,
      "amount_refunded": 10000,
      "payment_intent": "pi_3PbXyZ",
      "metadata": {"sale_id": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"},
      "payment_method_details": {"type": "card"}
    }
  }
}`

	stripeDisputeCreated = `{
  "id": "evt_3Dsp",
  "object": "event",
  "type": "charge.dispute.created",
  "created": 1718400000,
  "data": {
    "object": {
      "id": "dp_1Q",
      "object": "dispute",
      "amount": 10000,
      "charge": "ch_3PbXyZ",
      "payment_intent": "pi_3PbXyZ",
      "status": "needs_response"
    }
  }
}`

	squarePaymentCompleted = `{
  "merchant_id": "MLQW9F8",
  "type": "payment.updated",
  "event_id": "0f6a4f7e-1d8b",
  "created_at": "2024-06-12T16:45:03Z",
  "data": {
    "type": "payment",
    "id": "R2Z9Gm",
    "object": {
      "payment": {
        "id": "R2Z9Gm",
        "status": "COMPLETED",
        "source_type": "CARD",
        "reference_id": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10",
        "amount_money": {"amount": 10000, "currency": "USD"},
        "processing_fee": [
          {"type": "INITIAL", "amount_money": {"amount": 320, "currency": "USD"}},
          {"type": "ADJUSTMENT", "amount_money": {"amount": 180, "currency": "USD"}}
        ]
      }
    }
  }
}`

	squareRefundCompleted = `{
  "merchant_id": "MLQW9F8",
  "type": "refund.updated",
  "event_id": "a41c",
  "created_at": "2024-06-13T10:00:00Z",
  "data": {
    "type": "refund",
    "id": "rf_1",
    "object": {
      "refund": {
        "id": "rf_1",
        "status": "COMPLETED",
        "payment_id": "R2Z9Gm",
        "amount_money": {"amount": 10000, "currency": "USD"}
      }
    }
  }
}`

	squareDisputeCreated = `{
  "merchant_id": "MLQW9F8",
  "type": "dispute.created",
  "created_at": "2024-06-14T10:00:00Z",
  "data": {
    "type": "dispute",
    "id": "dsp_1",
    "object": {
      "dispute": {
        "id": "dsp_1",
        "state": "EVIDENCE_REQUIRED",
        "amount_money": {"amount": 10000, "currency": "USD"},
        "disputed_payment": {"payment_id": "R2Z9Gm"}
      }
    }
  }
}`

	asaasPaymentReceived = `{
  "id": "evt_05b708f961d739ea7eba7e4db318f621",
  "event": "PAYMENT_RECEIVED",
  "dateCreated": "2024-06-12 13:45:03",
  "payment": {
    "object": "payment",
    "id": "pay_080225913252",
    "customer": "cus_G7Dvo4iphUNk",
    "value": 100.00,
    "netValue": 95.00,
    "billingType": "PIX",
    "status": "RECEIVED",
    "externalReference": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"
  }
}`

	asaasPaymentConfirmed = `{
  "id": "evt_aa01",
  "event": "PAYMENT_CONFIRMED",
  "dateCreated": "2024-06-12 13:45:01",
  "payment": {
    "id": "pay_080225913252",
    "value": 100.00,
    "netValue": 95.00,
    "billingType": "PIX",
    "status": "CONFIRMED",
    "externalReference": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"
  }
}`

	pagarmeOrderPaid = `{
  "id": "hook_RyEKhZG",
  "account": {"id": "acc_x", "name": "Loja"},
  "type": "order.paid",
  "created_at": "2024-06-12T16:45:03Z",
  "data": {
    "id": "or_56GXnk6",
    "code": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10",
    "amount": 10000,
    "status": "paid",
    "metadata": {"fee_cents": "500", "interest_cents": "120"},
    "charges": [
      {"id": "ch_K6Wd8", "payment_method": "credit_card", "status": "paid"}
    ]
  }
}`

	pagarmeChargeChargedback = `{
  "id": "hook_Zp1",
  "type": "charge.chargedback",
  "created_at": "2024-07-01T09:00:00Z",
  "data": {
    "id": "ch_K6Wd8",
    "amount": 10000,
    "payment_method": "credit_card",
    "status": "chargedback",
    "order": {"id": "or_56GXnk6", "code": "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"}
  }
}`
)
