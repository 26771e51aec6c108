package sqlinline

const QInsertHistory = `--sql 1995eb4d-217c-4e5e-a906-a07ecdbeb890
insert into ai_history (id, user_id, module_type, input_data, output_data, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, coalesce($3::jsonb, '{}'::jsonb), coalesce($4::jsonb, '{}'::jsonb), now());
`

const QSelectRecentHistory = `--sql 321b4cd2-826e-492f-bab5-a2c9e57e9a48
select id::text, user_id::text, module_type, input_data, output_data, created_at
from ai_history
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`
